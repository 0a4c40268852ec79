package ranking

import "hash/fnv"

// interactionBuckets quantizes the hash into 1000 steps of 0.001.
const interactionBuckets = 1000

// InteractionBias is the placeholder personalization signal: a fixed-seed
// FNV-1a hash of "userId:songId" mapped into [0,1). It stands in for a
// trained user/item model and must stay reproducible across processes and
// machines, so Go's randomized map hashing is off limits here.
func InteractionBias(userID, songID string) float64 {
	h := fnv.New32a()
	h.Write([]byte(userID))
	h.Write([]byte{':'})
	h.Write([]byte(songID))
	return float64(h.Sum32()%interactionBuckets) / interactionBuckets
}
