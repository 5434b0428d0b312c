package pdftext

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"io"
)

// DefaultCrypto wires the three injection points (see crypto.go) to
// the standard library: compress/zlib for FlateDecode, crypto/md5 for
// the Standard Security Handler's key derivation, and crypto/aes in
// CBC mode for AESV2 streams and strings. This file is the only one
// in the package that imports compression or crypto packages; the
// parsing code calls them only through Crypto, so callers that embed
// this reader in an environment with, say, a hardware MD5 offload or
// a vendored zlib can swap in their own Crypto instead.
func DefaultCrypto() Crypto {
	return Crypto{
		Inflate:        stdlibInflate,
		InflateRelaxed: stdlibInflateRelaxed,
		MD5:            stdlibMD5,
		AESCBC:         stdlibAESCBCDecrypt,
	}
}

func stdlibInflate(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// stdlibInflateRelaxed decompresses a zlib stream without validating
// its trailing Adler-32 checksum: it skips the 2-byte zlib header
// (or, for a headerless stream, the raw bytes themselves) and reads
// through compress/flate directly, keeping whatever bytes were
// successfully decoded before a truncated or corrupt trailer breaks
// the read. Used only as a fallback after stdlibInflate has already
// failed.
func stdlibInflateRelaxed(src []byte) ([]byte, error) {
	body := src
	if len(body) >= 2 && body[0]&0x0f == 8 {
		body = body[2:]
	}
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	data, err := io.ReadAll(r)
	if len(data) > 0 {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func stdlibMD5(src []byte) [16]byte {
	return md5.Sum(src)
}

// stdlibAESCBCDecrypt expects src to be IV || ciphertext, per the
// Standard Security Handler's AESV2 crypt filter convention, and
// strips PKCS#7 padding from the result.
func stdlibAESCBCDecrypt(key, src []byte) ([]byte, error) {
	if len(src) < aes.BlockSize {
		return nil, parseErrorf(-1, "AES ciphertext shorter than one block")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := src[:aes.BlockSize]
	ct := src[aes.BlockSize:]
	if len(ct)%aes.BlockSize != 0 {
		return nil, parseErrorf(-1, "AES ciphertext not a multiple of the block size")
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	return stripPKCS7(out), nil
}

func stripPKCS7(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	pad := int(data[len(data)-1])
	if pad <= 0 || pad > aes.BlockSize || pad > len(data) {
		return data
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return data
		}
	}
	return data[:len(data)-pad]
}
