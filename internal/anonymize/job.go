package anonymize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// Transformation is one append-only audit entry recording a single
// substitution. OriginalSpan is only ever held in process and returned
// to the caller; persisted audit entries carry OriginalHash instead,
// a keyed hash of the span, so the audit log cannot reverse the
// anonymization it documents.
type Transformation struct {
	Kind         string `json:"kind"`
	OriginalSpan string `json:"originalSpan,omitempty"`
	OriginalHash string `json:"originalHash"`
	Replacement  string `json:"replacement"`
	Method       string `json:"method"`
}

// Job is the context of one anonymization run: a single text, or a
// single dataset export. It owns the pseudonym map that guarantees
// identical input tokens map to identical replacements within the job,
// and it is discarded when the job completes. Nothing leaks across
// independent jobs.
type Job struct {
	ID              uuid.UUID
	pseudonyms      map[string]string
	transformations []Transformation
	hashKey         []byte
}

func newJob(hashKey []byte) *Job {
	return &Job{
		ID:         uuid.New(),
		pseudonyms: make(map[string]string),
		hashKey:    hashKey,
	}
}

// replacement returns the consistent replacement for a literal within
// this job, establishing token as the mapping on first sight.
func (j *Job) replacement(literal, token string) string {
	if existing, ok := j.pseudonyms[literal]; ok {
		return existing
	}
	j.pseudonyms[literal] = token
	return token
}

// record appends one audit entry for a substitution.
func (j *Job) record(kind, original, replacement, method string) {
	j.transformations = append(j.transformations, Transformation{
		Kind:         kind,
		OriginalSpan: original,
		OriginalHash: j.hash(original),
		Replacement:  replacement,
		Method:       method,
	})
}

// hash computes the keyed hash of an original span for audit storage.
// Without a configured key it degrades to a plain SHA-256, which is
// still one-way but vulnerable to dictionary probing.
func (j *Job) hash(s string) string {
	if len(j.hashKey) > 0 {
		mac := hmac.New(sha256.New, j.hashKey)
		mac.Write([]byte(s))
		return hex.EncodeToString(mac.Sum(nil))
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Transformations returns the audit trail accumulated so far.
func (j *Job) Transformations() []Transformation {
	return j.transformations
}
