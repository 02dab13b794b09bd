// Package pow implements the proof-of-work admission gate for new blocks: a
// costly nonce search over the previous block's proof and a cheap
// verification of that work.
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// zeroTarget supports difficulties up to the full width of a sha256 hex
// digest, 64 leading zero characters.
const zeroTarget = "0000000000000000000000000000000000000000000000000000000000000000"

// Valid reports whether proof completes the work started by lastProof. The
// digest input is the decimal concatenation of the two proofs and the work is
// valid when the first difficulty hex characters of the digest are all '0'.
func Valid(lastProof uint64, proof uint64, difficulty int) bool {
	if difficulty < 1 || difficulty > len(zeroTarget) {
		return false
	}

	guess := strconv.FormatUint(lastProof, 10) + strconv.FormatUint(proof, 10)
	hash := sha256.Sum256([]byte(guess))
	digest := hex.EncodeToString(hash[:])

	return digest[:difficulty] == zeroTarget[:difficulty]
}

// Search finds the smallest proof that validates against lastProof. The scan
// is an ascending walk from zero so independent nodes mining against the same
// predecessor race the same search space. Search runs until a proof is found
// or ctx is cancelled.
func Search(ctx context.Context, lastProof uint64, difficulty int, ev func(v string, args ...any)) (uint64, error) {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	var proof uint64
	var attempts uint64

	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("pow: search: attempts[%d]", attempts)
		}

		// Did the caller give up on the search.
		if ctx.Err() != nil {
			ev("pow: search: CANCELLED")
			return 0, ctx.Err()
		}

		if Valid(lastProof, proof, difficulty) {
			ev("pow: search: SOLVED: lastProof[%d] proof[%d] attempts[%d]", lastProof, proof, attempts)
			return proof, nil
		}

		proof++
	}
}
