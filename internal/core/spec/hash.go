package spec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/scinode/nodegraph/internal/core/socket"
)

// Hash computes a pure structural hash over (identifier, inputs, outputs,
// extra). It is stable across repeated calls and insensitive to map-key
// insertion order: the payload is rendered through encoding/json, which
// writes map keys in sorted order, before hashing.
func Hash(identifier string, inputs, outputs *socket.Spec, extra any) (string, error) {
	payload := map[string]any{"identifier": identifier}
	if inputs != nil {
		payload["inputs"] = inputs.ToDict()
	}
	if outputs != nil {
		payload["outputs"] = outputs.ToDict()
	}
	if extra != nil {
		payload["extra"] = extra
	}
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hash payload not serializable: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Hash returns the structural hash of the spec's identity and interface.
func (s *NodeSpec) Hash() (string, error) {
	return Hash(s.Identifier, s.Inputs, s.Outputs, nil)
}
