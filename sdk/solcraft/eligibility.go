package solcraft

import "time"

// RemainingCooldown computes how long a recipient must still wait before the
// next claim. A zero lastClaimedAt means the wallet has never claimed and is
// immediately eligible.
//
// The value is recomputed from the fetched timestamp at every read against
// the caller's wall clock, not counted down locally; under clock skew between
// client and ledger it can be slightly wrong in either direction. Callers
// must re-fetch the recipient record after each claim.
func RemainingCooldown(lastClaimedAt int64, cooldownSeconds uint64, now time.Time) time.Duration {
	if lastClaimedAt == 0 {
		return 0
	}
	eligibleAt := lastClaimedAt + int64(cooldownSeconds)
	remaining := eligibleAt - now.Unix()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Second
}
