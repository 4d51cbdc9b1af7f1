// Package modelfile persists chain models.
//
// A model file holds the two flat tables of a chain.Model. Two encodings are
// supported: msgpack (compact, the default) and JSON. The JSON layout matches
// the markov_data.json files written by the Rust MkMarkov tool, so those files
// load directly:
//
//	{
//	  "token_map": [["Start", {"String": "hi"}, 3], ...],
//	  "function_param_map": [["x2", "speed", {"Value": "2s"}, 1], ...]
//	}
//
// Either encoding may be wrapped in zstd. Decode detects the compression and
// the encoding from the data itself.
package modelfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/White-Green/MkMarkov/pkg/chain"
)

// Format is a model encoding.
type Format string

const (
	MsgPack Format = "msgpack"
	JSON    Format = "json"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("modelfile: unknown format")

// ParseFormat parses a format name. The empty string selects MsgPack.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", MsgPack:
		return MsgPack, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options control encoding.
type Options struct {
	Format   Format
	Compress bool
}

// Ext returns the file extension for opts, such as ".msgpack.zst".
func (o Options) Ext() string {
	f := o.Format
	if f == "" {
		f = MsgPack
	}
	ext := "." + string(f)
	if o.Compress {
		ext += ".zst"
	}
	return ext
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Encode writes m to w.
func Encode(w io.Writer, m *chain.Model, opts Options) (err error) {
	if opts.Compress {
		zw, zerr := zstd.NewWriter(w)
		if zerr != nil {
			return fmt.Errorf("modelfile: zstd: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("modelfile: zstd: %w", cerr)
			}
		}()
		w = zw
	}

	switch opts.Format {
	case "", MsgPack:
		err = msgpack.NewEncoder(w).Encode(toWire(m))
	case JSON:
		err = encodeJSON(w, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return fmt.Errorf("modelfile: encode %s: %w", opts.Format, err)
	}
	return nil
}

// Decode reads a model in any supported encoding.
func Decode(r io.Reader) (*chain.Model, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(zstdMagic)); bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("modelfile: zstd: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("modelfile: decode: %w", err)
	}
	if first == '{' {
		m, err := decodeJSON(br)
		if err != nil {
			return nil, fmt.Errorf("modelfile: decode json: %w", err)
		}
		return m, nil
	}

	var wm wireModel
	if err := msgpack.NewDecoder(br).Decode(&wm); err != nil {
		return nil, fmt.Errorf("modelfile: decode msgpack: %w", err)
	}
	return wm.model()
}

// firstNonSpace skips ASCII whitespace and returns the next byte without
// consuming it.
func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			br.ReadByte()
		default:
			return b[0], nil
		}
	}
}
