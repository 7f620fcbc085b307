package crypto

import "fmt"

// EncryptBlob encrypts a serialized session blob (tree values, pagination,
// load-state or message JSON) before it is written to a session store row.
// If key is nil, the blob is returned unchanged (no-op, encryption disabled).
func EncryptBlob(blob string, key []byte) (string, error) {
	if key == nil {
		return blob, nil
	}

	enc, err := Encrypt(blob, key)
	if err != nil {
		return "", fmt.Errorf("encrypt session blob: %w", err)
	}

	return enc, nil
}

// DecryptBlob decrypts a session blob previously produced by EncryptBlob.
// If key is nil, or the blob carries no "enc:" prefix, it is returned as-is.
func DecryptBlob(blob string, key []byte) (string, error) {
	if key == nil {
		return blob, nil
	}

	dec, err := Decrypt(blob, key)
	if err != nil {
		return "", fmt.Errorf("decrypt session blob: %w", err)
	}

	return dec, nil
}
