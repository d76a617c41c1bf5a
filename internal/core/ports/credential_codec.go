package ports

// CredentialCodec reversibly protects the remote platform's per-user
// password at rest. Decrypt must fail on malformed ciphertext or a wrong
// key, never silently return garbage.
type CredentialCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
