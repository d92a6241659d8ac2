// Package serialization provides the codec layer used wherever node-graph
// data crosses a process boundary: spec dicts persisted to a store, opaque
// property payloads, and inline executor payloads. A Serializer is a
// codec/compression/encryption pipeline whose shape is described by a
// Descriptor, so remote readers can reverse it without this package.
package serialization

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes values to bytes and back.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// Compression selects the compression applied after encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Options configures a Serializer.
type Options struct {
	Codec       Codec
	Compression Compression
	// EncryptKey enables AES-GCM encryption when set; it must be a 32-byte
	// AES-256 key.
	EncryptKey []byte
}

// Descriptor names the pipeline stages in serialized payloads.
type Descriptor struct {
	Codec       string `json:"codec"`
	Compression string `json:"compression"`
	Encrypted   bool   `json:"encrypted"`
}

// Serializer runs encode, compress, encrypt on the way out and the reverse
// on the way in.
type Serializer struct {
	opts Options
}

// New creates a serializer. A nil codec defaults to msgpack.
func New(opts Options) *Serializer {
	if opts.Codec == nil {
		opts.Codec = &MsgPackCodec{}
	}
	if opts.Compression == "" {
		opts.Compression = CompressionNone
	}
	return &Serializer{opts: opts}
}

// Descriptor describes this serializer's pipeline.
func (s *Serializer) Descriptor() Descriptor {
	return Descriptor{
		Codec:       s.opts.Codec.Name(),
		Compression: string(s.opts.Compression),
		Encrypted:   len(s.opts.EncryptKey) > 0,
	}
}

// Serialize encodes, compresses and encrypts v.
func (s *Serializer) Serialize(v any) ([]byte, error) {
	data, err := s.opts.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("codec encoding failed: %w", err)
	}
	if data, err = s.compress(data); err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	if len(s.opts.EncryptKey) > 0 {
		if data, err = s.encrypt(data); err != nil {
			return nil, fmt.Errorf("encryption failed: %w", err)
		}
	}
	return data, nil
}

// Deserialize decrypts, decompresses and decodes data into v.
func (s *Serializer) Deserialize(data []byte, v any) error {
	var err error
	if len(s.opts.EncryptKey) > 0 {
		if data, err = s.decrypt(data); err != nil {
			return fmt.Errorf("decryption failed: %w", err)
		}
	}
	if data, err = s.decompress(data); err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if err = s.opts.Codec.Decode(data, v); err != nil {
		return fmt.Errorf("codec decoding failed: %w", err)
	}
	return nil
}

func (s *Serializer) compress(data []byte) ([]byte, error) {
	switch s.opts.Compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (s *Serializer) decompress(data []byte) ([]byte, error) {
	switch s.opts.Compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

func (s *Serializer) encrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.opts.EncryptKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (s *Serializer) decrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.opts.EncryptKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("invalid ciphertext size")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// JSONCodec encodes through encoding/json; every value it accepts is
// readable by any JSON consumer.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error)     { return json.Marshal(v) }
func (c *JSONCodec) Decode(data []byte, v any) error  { return json.Unmarshal(data, v) }
func (c *JSONCodec) Name() string                     { return "json" }

// MsgPackCodec encodes through msgpack. It preserves binary payloads, which
// JSON cannot, so it backs the opaque value path.
type MsgPackCodec struct{}

func (c *MsgPackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (c *MsgPackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (c *MsgPackCodec) Name() string                    { return "msgpack" }
