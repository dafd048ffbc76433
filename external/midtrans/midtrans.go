package midtrans

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

func NewSnapClient(serverKey, env string) *snap.Client {
	var client snap.Client

	mtEnv := midtrans.Sandbox
	if env == "production" {
		mtEnv = midtrans.Production
	}
	client.New(serverKey, mtEnv)

	return &client
}

// VerifySignature checks the signature_key Midtrans sends with every
// HTTP notification: sha512(order_id + status_code + gross_amount +
// server key).
func VerifySignature(
	orderID string,
	statusCode string,
	grossAmount string,
	signature string,
	serverKey string,
) bool {

	raw := orderID + statusCode + grossAmount + serverKey
	hash := sha512.Sum512([]byte(raw))
	expected := hex.EncodeToString(hash[:])

	return expected == signature
}
