package walk

import (
	"bufio"
	"context"
	"io"

	"github.com/gogo/protobuf/proto"
	"github.com/grailbio/base/file"
	"github.com/grailbio/graphasm/gfa"
	"github.com/pkg/errors"
)

// Writer appends Walks to a binary, length-delimited stream: each record is
// a varint frame length followed by a frame containing the walk name
// (length-delimited) and its steps (count-prefixed packed varints, one per
// step, node id and strand folded into a single value as 2*id+strand). The
// framing mirrors the length-delimited record stream the upstream aligner's
// stream.hpp writes, built here on gogo/protobuf's varint primitives rather
// than a generated message type, since no .proto compiler is available in
// this pipeline stage.
type Writer struct {
	out file.File
	w   *bufio.Writer
}

// NewWriter creates (or truncates) a walk stream at path.
func NewWriter(ctx context.Context, path string) (*Writer, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "walk: create %s", path)
	}
	return &Writer{out: out, w: bufio.NewWriter(out.Writer(ctx))}, nil
}

// Write appends a single walk record.
func (wr *Writer) Write(w Walk) error {
	buf := proto.NewBuffer(nil)
	if err := buf.EncodeRawBytes([]byte(w.Name)); err != nil {
		return errors.Wrap(err, "walk: encode name")
	}
	if err := buf.EncodeVarint(uint64(len(w.Steps))); err != nil {
		return errors.Wrap(err, "walk: encode step count")
	}
	for _, s := range w.Steps {
		if err := buf.EncodeVarint(encodeStep(s)); err != nil {
			return errors.Wrap(err, "walk: encode step")
		}
	}
	frame := buf.Bytes()
	if _, err := wr.w.Write(proto.EncodeVarint(uint64(len(frame)))); err != nil {
		return errors.Wrap(err, "walk: write frame length")
	}
	if _, err := wr.w.Write(frame); err != nil {
		return errors.Wrap(err, "walk: write frame")
	}
	return nil
}

// Close flushes buffered output and closes the underlying file.
func (wr *Writer) Close(ctx context.Context) error {
	if err := wr.w.Flush(); err != nil {
		wr.out.Close(ctx)
		return errors.Wrap(err, "walk: flush")
	}
	return errors.Wrap(wr.out.Close(ctx), "walk: close")
}

// Reader reads a binary walk stream written by Writer.
type Reader struct {
	in file.File
	r  *bufio.Reader
}

// NewReader opens a walk stream for reading.
func NewReader(ctx context.Context, path string) (*Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "walk: open %s", path)
	}
	return &Reader{in: in, r: bufio.NewReader(in.Reader(ctx))}, nil
}

// Next reads the next walk record, returning io.EOF once the stream is
// exhausted.
func (rd *Reader) Next() (Walk, error) {
	frameLen, err := readUvarint(rd.r)
	if err != nil {
		if err == io.EOF {
			return Walk{}, io.EOF
		}
		return Walk{}, errors.Wrap(err, "walk: read frame length")
	}
	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(rd.r, frame); err != nil {
		return Walk{}, errors.Wrap(err, "walk: read frame")
	}
	buf := proto.NewBuffer(frame)
	name, err := buf.DecodeRawBytes(false)
	if err != nil {
		return Walk{}, errors.Wrap(err, "walk: decode name")
	}
	numSteps, err := buf.DecodeVarint()
	if err != nil {
		return Walk{}, errors.Wrap(err, "walk: decode step count")
	}
	steps := make([]Step, numSteps)
	for i := range steps {
		v, err := buf.DecodeVarint()
		if err != nil {
			return Walk{}, errors.Wrap(err, "walk: decode step")
		}
		steps[i] = decodeStep(v)
	}
	return Walk{Name: string(name), Steps: steps}, nil
}

// Close closes the underlying file.
func (rd *Reader) Close(ctx context.Context) error {
	return errors.Wrap(rd.in.Close(ctx), "walk: close")
}

func encodeStep(s gfa.NodePos) uint64 {
	v := uint64(s.ID) << 1
	if s.End {
		v |= 1
	}
	return v
}

func decodeStep(v uint64) gfa.NodePos {
	return gfa.NodePos{ID: int(v >> 1), End: v&1 == 1}
}

// readUvarint reads a base-128 varint directly off the stream, one byte at a
// time; proto.DecodeVarint only operates on an in-memory slice, so the outer
// frame-length prefix (whose length isn't known ahead of time) is decoded by
// hand using the same encoding proto.EncodeVarint produces.
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
			if i > 9 || (i == 9 && b > 1) {
				return 0, errors.New("walk: varint overflow")
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
}
