package pdftext

// Crypto bundles the three byte-level primitives the parser needs
// but never picks an implementation for itself: Flate inflation, MD5
// (for the Standard Security Handler's key derivation), and AES-128
// CBC decryption. Callers wire in real implementations; the parsing
// code reaches compression and cryptography only through these
// fields. DefaultCrypto (defaults.go, in this package) supplies
// stdlib-backed ones, and that file is the only one in the package
// that imports compression or cryptography libraries.
type Crypto struct {
	Inflate Inflate
	// InflateRelaxed is tried when Inflate fails: a raw Flate reader
	// with no zlib header/trailer checksum validation, for the
	// truncated-or-malformed-trailer streams real-world PDFs produce.
	InflateRelaxed Inflate
	MD5            MD5Func
	AESCBC         AESCBCDecrypt
}

// Inflate decompresses a raw zlib/Flate-encoded byte stream.
type Inflate func(src []byte) ([]byte, error)

// MD5Func returns the 16-byte MD5 digest of src.
type MD5Func func(src []byte) [16]byte

// AESCBCDecrypt decrypts src (IV-prefixed, PKCS#7-padded CBC
// ciphertext produced by the Standard Security Handler's AESV2/AESV3
// crypt filters) under key.
type AESCBCDecrypt func(key, src []byte) ([]byte, error)

// securityHandler holds the document-wide file key derived from the
// Standard Security Handler's /Encrypt dictionary (ISO 32000-1 §7.6),
// assuming an empty user password - the only case this reader
// supports; a non-empty user password surfaces as UnsupportedError.
type securityHandler struct {
	fileKey         []byte
	v               int64
	r               int64
	keyLengthBytes  int
	useAES          bool
	encryptMetadata bool
}

var padBytes = [32]byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// setupEncryption reads the trailer's /Encrypt entry, if any, and
// derives the file key via Algorithm 2 under the assumption of an
// empty user password. A non-Standard /Filter, or V5/R6 (AES-256),
// is reported as UnsupportedError rather than guessed at.
func (d *Document) setupEncryption() error {
	ev, ok := d.trailer["Encrypt"]
	if !ok {
		return nil
	}
	if d.crypto.MD5 == nil || d.crypto.AESCBC == nil {
		return unsupportedErrorf("encrypted PDF but no MD5/AES-CBC primitives are configured")
	}
	encRef, isRef := ev.(objRef)
	raw, err := d.rawObject(ev)
	if err != nil {
		return err
	}
	dict, ok := raw.(cosDict)
	if !ok {
		return parseErrorf(-1, "/Encrypt is not a dictionary")
	}
	if !isNameEqual(newValue(nil, dict["Filter"]), "Standard") {
		return unsupportedErrorf("unsupported security handler %v", dict["Filter"])
	}
	v := numberToInt64(dict["V"])
	r := numberToInt64(dict["R"])
	if v >= 5 || r >= 5 {
		return unsupportedErrorf("AES-256 (V5/R6) encryption is not supported")
	}
	length := int64(40)
	if lv, ok := dict["Length"]; ok {
		length = numberToInt64(lv)
	}
	keyLen := int(length / 8)
	if keyLen <= 0 {
		keyLen = 5
	}

	useAES := false
	if cf, ok := dict["CF"].(cosDict); ok {
		if stdCF, ok := cf["StdCF"].(cosDict); ok {
			if isNameEqual(newValue(nil, stdCF["CFM"]), "AESV2") {
				useAES = true
				keyLen = 16
			}
		}
	}

	oStr, _ := dict["O"].(string)
	uStr, _ := dict["U"].(string)
	p := numberToInt64(dict["P"])
	encryptMetadata := true
	if em, ok := dict["EncryptMetadata"]; ok {
		if b, ok := em.(bool); ok {
			encryptMetadata = b
		}
	}

	var id0 string
	if idArr, ok := d.trailer["ID"].(cosArray); ok && len(idArr) > 0 {
		if s, ok := idArr[0].(string); ok {
			id0 = s
		}
	}

	fileKey := deriveFileKey(d.crypto.MD5, []byte(oStr), p, []byte(id0), r, keyLen, encryptMetadata)
	// Check the derivation against /U; a mismatch means the document
	// needs a non-empty user password, which this reader does not
	// support.
	var verified bool
	if r >= 3 {
		verified = verifyUserPasswordR3Plus(d.crypto.MD5, fileKey, []byte(id0), uStr)
	} else {
		verified = verifyUserPasswordR2(d.crypto.MD5, fileKey, uStr)
	}
	if !verified {
		return unsupportedErrorf("encrypted PDF requires a password")
	}

	d.security = &securityHandler{
		fileKey:         fileKey,
		v:               v,
		r:               r,
		keyLengthBytes:  keyLen,
		useAES:          useAES,
		encryptMetadata: encryptMetadata,
	}
	if isRef {
		d.encryptRef = &encRef
	}
	return nil
}

// deriveFileKey implements Algorithm 2 (ISO 32000-1 §7.6.3.3): pad
// the (empty) user password, mix in /O, /P, the first file ID
// string, and - for R>=4 with EncryptMetadata false - four 0xFF
// bytes, then MD5 the result (iterating 50 more times for R>=3).
func deriveFileKey(md5 MD5Func, o []byte, p int64, id0 []byte, r int64, keyLen int, encryptMetadata bool) []byte {
	buf := make([]byte, 0, 32+32+4+len(id0)+4)
	buf = append(buf, padBytes[:]...)
	buf = append(buf, o...)
	buf = append(buf, byte(p), byte(p>>8), byte(p>>16), byte(p>>24))
	buf = append(buf, id0...)
	if r >= 4 && !encryptMetadata {
		buf = append(buf, 0xFF, 0xFF, 0xFF, 0xFF)
	}
	digest := md5(buf)
	key := digest[:]
	if r >= 3 {
		for i := 0; i < 50; i++ {
			d := md5(key[:keyLen])
			key = d[:]
		}
	}
	if keyLen > len(key) {
		keyLen = len(key)
	}
	return append([]byte(nil), key[:keyLen]...)
}

func verifyUserPasswordR2(md5 MD5Func, fileKey []byte, u string) bool {
	computed := rc4Crypt(fileKey, padBytes[:])
	return string(computed) == u
}

func verifyUserPasswordR3Plus(md5 MD5Func, fileKey []byte, id0 []byte, u string) bool {
	// Algorithm 5: RC4-encrypt MD5(pad || id0) under the file key,
	// then 19 more times under the file key XORed with the round
	// number 1..19, and compare with the first 16 bytes of /U.
	buf := append(append([]byte{}, padBytes[:]...), id0...)
	digest := md5(buf)
	x := rc4Crypt(fileKey, digest[:])
	for i := 1; i <= 19; i++ {
		x = rc4Crypt(xorKey(fileKey, byte(i)), x)
	}
	return len(u) >= 16 && string(x) == u[:16]
}

func xorKey(key []byte, salt byte) []byte {
	out := make([]byte, len(key))
	for i, b := range key {
		out[i] = b ^ salt
	}
	return out
}

// objectKey derives the per-object key for Algorithm 1: the file key
// extended with the object number and generation's low bytes (and,
// for AES, the constant "sAlT" salt), MD5-hashed and truncated to
// min(keyLen+5, 16) bytes.
func (s *securityHandler) objectKey(md5 MD5Func, ref objRef) []byte {
	buf := append([]byte(nil), s.fileKey...)
	buf = append(buf, byte(ref.num), byte(ref.num>>8), byte(ref.num>>16))
	buf = append(buf, byte(ref.gen), byte(ref.gen>>8))
	if s.useAES {
		buf = append(buf, 's', 'A', 'l', 'T')
	}
	digest := md5(buf)
	n := len(s.fileKey) + 5
	if n > 16 {
		n = 16
	}
	return digest[:n]
}

func (d *Document) decryptBytes(data []byte, ref objRef) ([]byte, error) {
	if d.security == nil {
		return data, nil
	}
	if d.encryptRef != nil && ref == *d.encryptRef {
		return data, nil
	}
	key := d.security.objectKey(d.crypto.MD5, ref)
	if d.security.useAES {
		if len(data) < 16 {
			return nil, parseErrorf(-1, "AES stream too short for IV")
		}
		return d.crypto.AESCBC(key, data)
	}
	return rc4Crypt(key, data), nil
}

func (d *Document) decryptStreamBytes(st *cosStream) ([]byte, error) {
	if d.security == nil {
		return st.raw, nil
	}
	if isNameEqual(newValue(nil, st.dict["Filter"]), "Crypt") {
		return st.raw, nil
	}
	if isNameEqual(newValue(nil, st.dict["Type"]), "XRef") {
		// Cross-reference streams are never encrypted.
		return st.raw, nil
	}
	return d.decryptBytes(st.raw, st.ref)
}

// rc4Crypt implements RC4 directly: it is a ~20-line stream cipher
// and pulling in an external dependency for it would add a module
// with no other use in this package, unlike AES-CBC which the Crypto
// injection point exists for (see DESIGN.md).
func rc4Crypt(key, data []byte) []byte {
	var s [256]byte
	for i := range s {
		s[i] = byte(i)
	}
	j := 0
	for i := 0; i < 256; i++ {
		j = (j + int(s[i]) + int(key[i%len(key)])) & 0xFF
		s[i], s[j] = s[j], s[i]
	}
	out := make([]byte, len(data))
	i, j := 0, 0
	for k, c := range data {
		i = (i + 1) & 0xFF
		j = (j + int(s[i])) & 0xFF
		s[i], s[j] = s[j], s[i]
		out[k] = c ^ s[(int(s[i])+int(s[j]))&0xFF]
	}
	return out
}
