// Package wire encodes exception reports for transport out of the
// process. The object core itself defines no wire protocol; embedders
// that want to ship an uncaught-exception diagnostic to a collector use
// this codec instead of reaching into the object graph.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/petal-lang/petal/vm"
)

// Frame is one traceback entry: where a frame was entered.
type Frame struct {
	File string `cbor:"file"`
	Line int64  `cbor:"line"`
	Func string `cbor:"func"`
}

// ExceptionReport is a self-contained snapshot of a raised exception:
// class name, message, and traceback frames oldest first.
type ExceptionReport struct {
	Class  string  `cbor:"class"`
	Msg    string  `cbor:"msg"`
	Frames []Frame `cbor:"frames"`
}

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalReport serializes an ExceptionReport to CBOR bytes.
func MarshalReport(rep *ExceptionReport) ([]byte, error) {
	return cborEncMode.Marshal(rep)
}

// UnmarshalReport deserializes an ExceptionReport from CBOR bytes.
func UnmarshalReport(data []byte) (*ExceptionReport, error) {
	var rep ExceptionReport
	if err := cbor.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("wire: unmarshal report: %w", err)
	}
	return &rep, nil
}

// ReportFromException snapshots a guest exception instance. Traceback
// entries that are not (file, line, func) triples are skipped; a missing
// or malformed traceback yields an empty frame list rather than an error.
func ReportFromException(r *vm.VM, exc *vm.Object) *ExceptionReport {
	rep := &ExceptionReport{Class: exc.ClassName()}

	if msg, ok := exc.OwnAttr("msg"); ok {
		if s, err := r.Str(msg); err == nil {
			rep.Msg = s
		}
	}

	tb, ok := exc.OwnAttr("__traceback__")
	if !ok || !tb.IsInstanceOf(r.ListClass) {
		return rep
	}
	list, release := vm.BorrowPayload[vm.ListPayload](tb)
	entries := make([]*vm.Object, len(list.Items))
	copy(entries, list.Items)
	release()

	for _, entry := range entries {
		if frame, ok := frameFromEntry(r, entry); ok {
			rep.Frames = append(rep.Frames, frame)
		}
	}
	return rep
}

func frameFromEntry(r *vm.VM, entry *vm.Object) (Frame, bool) {
	if !entry.IsInstanceOf(r.TupleClass) {
		return Frame{}, false
	}
	tuple, release := vm.BorrowPayload[vm.TuplePayload](entry)
	defer release()
	if len(tuple.Items) != 3 {
		return Frame{}, false
	}
	file, ok := vm.AsStr(tuple.Items[0])
	if !ok {
		return Frame{}, false
	}
	line, ok := vm.AsInt(tuple.Items[1])
	if !ok {
		return Frame{}, false
	}
	fn, ok := vm.AsStr(tuple.Items[2])
	if !ok {
		return Frame{}, false
	}
	return Frame{File: file, Line: line, Func: fn}, true
}
