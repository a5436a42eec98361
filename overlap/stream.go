package overlap

import (
	"bufio"
	"context"
	"io"
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Sink receives alignments as they are streamed off disk, in the style of
// the upstream aligner's callback-based StreamAlignments. Returning an error
// aborts the stream.
type Sink interface {
	OnAlignment(Alignment) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Alignment) error

// OnAlignment implements Sink.
func (f SinkFunc) OnAlignment(a Alignment) error { return f(a) }

// StreamAlignments reads the alignment file at path record by record,
// invoking sink for each one. It never materializes the whole file in
// memory, matching the streaming discipline alignment files are expected to
// support given their potential size.
func StreamAlignments(ctx context.Context, path string, sink Sink) error {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "overlap: open %s", path)
	}
	defer f.Close(ctx)
	r := bufio.NewReader(f.Reader(ctx))
	for {
		aln, err := readAlignment(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "overlap: read %s", path)
		}
		if err := sink.OnAlignment(aln); err != nil {
			return err
		}
	}
}

// Writer appends Alignments to a binary, length-delimited stream using the
// same varint-frame discipline as package walk.
type Writer struct {
	out file.File
	w   *bufio.Writer
}

// NewWriter creates (or truncates) an alignment stream at path.
func NewWriter(ctx context.Context, path string) (*Writer, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "overlap: create %s", path)
	}
	return &Writer{out: out, w: bufio.NewWriter(out.Writer(ctx))}, nil
}

// Write appends a single alignment record.
func (wr *Writer) Write(a Alignment) error {
	frame := encodeAlignment(a)
	if _, err := wr.w.Write(proto.EncodeVarint(uint64(len(frame)))); err != nil {
		return errors.Wrap(err, "overlap: write frame length")
	}
	if _, err := wr.w.Write(frame); err != nil {
		return errors.Wrap(err, "overlap: write frame")
	}
	return nil
}

// Close flushes buffered output and closes the underlying file.
func (wr *Writer) Close(ctx context.Context) error {
	if err := wr.w.Flush(); err != nil {
		wr.out.Close(ctx)
		return errors.Wrap(err, "overlap: flush")
	}
	return errors.Wrap(wr.out.Close(ctx), "overlap: close")
}

func encodeAlignment(a Alignment) []byte {
	buf := proto.NewBuffer(nil)
	buf.EncodeVarint(zigzag(a.LeftPath))
	buf.EncodeVarint(zigzag(a.RightPath))
	buf.EncodeVarint(uint64(a.LeftStart))
	buf.EncodeVarint(uint64(a.LeftEnd))
	buf.EncodeVarint(uint64(a.RightStart))
	buf.EncodeVarint(uint64(a.RightEnd))
	buf.EncodeVarint(boolToUint(a.RightReverse))
	buf.EncodeVarint(uint64(a.AlignmentLength))
	buf.EncodeFixed64(math.Float64bits(a.AlignmentIdentity))
	buf.EncodeVarint(uint64(len(a.AlignedPairs)))
	for _, p := range a.AlignedPairs {
		buf.EncodeVarint(uint64(p.LeftIndex))
		buf.EncodeVarint(uint64(p.RightIndex))
		buf.EncodeVarint(boolToUint(p.LeftReverse))
		buf.EncodeVarint(boolToUint(p.RightReverse))
	}
	return buf.Bytes()
}

func readAlignment(r io.ByteReader) (Alignment, error) {
	frameLen, err := readUvarint(r)
	if err != nil {
		return Alignment{}, err
	}
	frame := make([]byte, frameLen)
	for i := range frame {
		b, err := r.ReadByte()
		if err != nil {
			return Alignment{}, errors.Wrap(err, "overlap: truncated frame")
		}
		frame[i] = b
	}
	buf := proto.NewBuffer(frame)
	var a Alignment
	leftPath, err := buf.DecodeVarint()
	if err != nil {
		return Alignment{}, err
	}
	rightPath, err := buf.DecodeVarint()
	if err != nil {
		return Alignment{}, err
	}
	a.LeftPath = unzigzag(leftPath)
	a.RightPath = unzigzag(rightPath)
	fields := []*int{&a.LeftStart, &a.LeftEnd, &a.RightStart, &a.RightEnd}
	for _, f := range fields {
		v, err := buf.DecodeVarint()
		if err != nil {
			return Alignment{}, err
		}
		*f = int(v)
	}
	rev, err := buf.DecodeVarint()
	if err != nil {
		return Alignment{}, err
	}
	a.RightReverse = rev != 0
	length, err := buf.DecodeVarint()
	if err != nil {
		return Alignment{}, err
	}
	a.AlignmentLength = int(length)
	identityBits, err := buf.DecodeFixed64()
	if err != nil {
		return Alignment{}, err
	}
	a.AlignmentIdentity = math.Float64frombits(identityBits)
	numPairs, err := buf.DecodeVarint()
	if err != nil {
		return Alignment{}, err
	}
	a.AlignedPairs = make([]Pair, numPairs)
	for i := range a.AlignedPairs {
		li, err := buf.DecodeVarint()
		if err != nil {
			return Alignment{}, err
		}
		ri, err := buf.DecodeVarint()
		if err != nil {
			return Alignment{}, err
		}
		lr, err := buf.DecodeVarint()
		if err != nil {
			return Alignment{}, err
		}
		rr, err := buf.DecodeVarint()
		if err != nil {
			return Alignment{}, err
		}
		a.AlignedPairs[i] = Pair{
			LeftIndex:    int(li),
			RightIndex:   int(ri),
			LeftReverse:  lr != 0,
			RightReverse: rr != 0,
		}
	}
	return a, nil
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func zigzag(n int) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func unzigzag(v uint64) int {
	return int((v >> 1) ^ -(v & 1))
}

// readUvarint mirrors walk.readUvarint: the outer frame-length prefix isn't
// known ahead of time, so it is decoded byte-by-byte rather than through
// proto.DecodeVarint, which requires a fully buffered slice.
func readUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i == 0 && err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
}
