package utils

import (
	"crypto/rand"
	"math/big"
)

// Crockford-style alphabet without look-alike characters (0/O, 1/I/L).
const ticketAlphabet = "23456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateTicketCode returns a human-typable code like "CE-7KQ4-M2XP".
func GenerateTicketCode() string {
	buf := make([]byte, 8)
	max := big.NewInt(int64(len(ticketAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing leaves nothing better to fall back on
			panic(err)
		}
		buf[i] = ticketAlphabet[n.Int64()]
	}
	return "CE-" + string(buf[:4]) + "-" + string(buf[4:])
}
