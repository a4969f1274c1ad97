package crypto

const (
	// ContentKeySize is the size of a content key in bytes (AES-256).
	ContentKeySize = 32
	// IVSize is the size of a CBC initialization vector in bytes.
	IVSize = 16
	// TagSize is the size of the HMAC-SHA-256 authentication tag in bytes.
	TagSize = 32

	// MasterKeySize is the size of a derived master key in bytes.
	MasterKeySize = 32
	// MasterKeyIterations is the PBKDF2 work factor for master-key derivation.
	MasterKeyIterations = 100000
	// SaltSize is the size of a key-derivation salt in bytes.
	SaltSize = 16

	// KeyIDSize is the size of a content-key fingerprint in bytes.
	// Short enough to be a convenient identifier, long enough to avoid
	// accidental collisions; never used as a secret.
	KeyIDSize = 8

	// PinLength is the number of digits in an access PIN.
	PinLength = 4

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMCiphertextSize is the size of an ML-KEM-768 encapsulation in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the ML-KEM-768 shared secret in bytes.
	MLKEMSharedKeySize = 32
)

// hkdfContext is the domain-separation string for subkey derivation.
const hkdfContext = "secureshare:content:v1"

// sealContext is the domain-separation string for sealed-key wrapping.
const sealContext = "secureshare:keyseal:v1"
