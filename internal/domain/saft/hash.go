package saft

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
)

// HashControlPlaceholder marks hashes produced without an AT-certified key
const HashControlPlaceholder = "0"

// GenerateATCUD builds the unique document code from the series code and the
// 1-based position of the document inside the export batch.
func GenerateATCUD(seriesCode string, index int) string {
	return fmt.Sprintf("%s-%d", seriesCode, index)
}

// PlaceholderHash chains a document to its predecessor by digesting
// invoiceDate;systemEntryDate;invoiceNo;grossTotal;previousHash.
//
// This is NOT a valid AT signature. Certified software must sign the same
// message with RSA-SHA1 using its registered private key; exports built
// with this function are not accepted for submission.
func PlaceholderHash(invoiceDate, systemEntryDate, invoiceNo, grossTotal, previousHash string) string {
	msg := strings.Join([]string{invoiceDate, systemEntryDate, invoiceNo, grossTotal, previousHash}, ";")
	sum := sha1.Sum([]byte(msg))
	return base64.StdEncoding.EncodeToString(sum[:])
}
