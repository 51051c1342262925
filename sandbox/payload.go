package sandbox

import (
	"encoding/base64"
	"fmt"
)

// BootstrapProgram is the program inside the runner image that decodes the
// payload, compiles it and runs it.
const BootstrapProgram = "trampoline"

// EncodePayload encodes payload with standard base64. The alphabet contains
// no shell metacharacters, so the result can be passed unquoted.
func EncodePayload(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// DecodePayload reverses EncodePayload
func DecodePayload(encoded string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return decoded, nil
}

// PayloadCommand returns the in-container command that runs payload
func PayloadCommand(payload []byte) string {
	encoded := EncodePayload(payload)
	if encoded == "" {
		return BootstrapProgram
	}
	return BootstrapProgram + " " + encoded
}
