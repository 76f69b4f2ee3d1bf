// Package dump reads raw frame-buffer dumps taken from the camera and writes
// their planes out as 8-bit PGM images.
package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// WritePGM writes pix as a binary (P5) greyscale image. pix holds at least
// width*height bytes; any excess is ignored.
func WritePGM(w io.Writer, width, height int, pix []byte) error {
	if width <= 0 || height < 0 {
		return fmt.Errorf("invalid PGM geometry %dx%d", width, height)
	}
	n := width * height
	if len(pix) < n {
		return fmt.Errorf("PGM %dx%d needs %d bytes, have %d", width, height, n, len(pix))
	}
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	_, err := w.Write(pix[:n])
	return err
}

// WritePGMFile writes a PGM image to path.
func WritePGMFile(path string, width, height int, pix []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := WritePGM(bw, width, height, pix); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Frames reads fixed-size frames from a dump.
type Frames struct {
	r    io.Reader
	size int
	read int
}

// NewFrames reads frames of size bytes from r after skipping offset bytes.
func NewFrames(r io.Reader, size int, offset int64) (*Frames, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid frame size %d", size)
	}
	if offset > 0 {
		if _, err := io.CopyN(io.Discard, r, offset); err != nil {
			return nil, fmt.Errorf("failed to skip %d bytes: %w", offset, err)
		}
	}
	return &Frames{r: bufio.NewReaderSize(r, size), size: size}, nil
}

// Size returns the frame size in bytes.
func (f *Frames) Size() int {
	return f.size
}

// Count returns the number of frames returned so far.
func (f *Frames) Count() int {
	return f.read
}

// Next fills buf with the next frame and returns the number of bytes read.
// A trailing partial frame is returned with io.ErrUnexpectedEOF; io.EOF
// means the dump is exhausted.
func (f *Frames) Next(buf []byte) (int, error) {
	if len(buf) < f.size {
		return 0, fmt.Errorf("buffer of %d bytes is smaller than frame size %d", len(buf), f.size)
	}
	n, err := io.ReadFull(f.r, buf[:f.size])
	if n > 0 {
		f.read++
	}
	return n, err
}

// SplitOptions configure Split.
type SplitOptions struct {
	Width  int
	Height int
	Prefix string
	Offset int64
}

// Split cuts the dump at path into consecutive width x height PGM images named
// <prefix>0001.pgm, <prefix>0002.pgm and so on. A trailing partial frame is
// written with its height truncated to the whole rows it holds. It returns
// the files written.
func Split(path string, opts SplitOptions) ([]string, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame geometry %dx%d", opts.Width, opts.Height)
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer in.Close()

	frames, err := NewFrames(in, opts.Width*opts.Height, opts.Offset)
	if err != nil {
		return nil, err
	}

	var written []string
	buf := make([]byte, frames.Size())
	for {
		n, err := frames.Next(buf)
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		partial := errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !partial {
			return written, fmt.Errorf("failed to read frame %d: %w", frames.Count()+1, err)
		}

		rows := n / opts.Width
		name := fmt.Sprintf("%s%04d.pgm", opts.Prefix, frames.Count())
		if err := WritePGMFile(name, opts.Width, rows, buf); err != nil {
			return written, err
		}
		written = append(written, name)

		if partial {
			return written, nil
		}
	}
}
