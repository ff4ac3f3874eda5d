package barcode

import (
	"errors"

	"go-student-scanner/internal/logger"

	"github.com/sirupsen/logrus"
)

// Reader drives a Decoder across the fallback chain until one attempt
// yields a symbol. It holds no mutable state and is safe for concurrent use.
type Reader struct {
	decoder  Decoder
	attempts []attemptStrategy
}

// NewReader creates a Reader over the given decoder
func NewReader(decoder Decoder) *Reader {
	return &Reader{
		decoder:  decoder,
		attempts: defaultAttempts(),
	}
}

// Read returns the first symbol found. A decoder error or an empty result
// moves on to the next attempt; only ErrDecoderUnavailable is returned.
func (r *Reader) Read(img NormalizedImage) (Outcome, error) {
	var outcome Outcome

	for _, attempt := range r.attempts {
		candidate, ok := attempt.Prepare(img)
		if !ok {
			continue
		}
		outcome.Attempts = append(outcome.Attempts, attempt.Name())

		symbols, err := r.decoder.Decode(candidate)
		if err != nil {
			if errors.Is(err, ErrDecoderUnavailable) {
				return outcome, err
			}
			logger.WithError(err).WithFields(logrus.Fields{
				"attempt":  attempt.Name(),
				"channels": candidate.Channels,
			}).Debug("Decode attempt failed")
			continue
		}

		if symbol, found := firstSymbol(symbols); found {
			outcome.Symbol = symbol
			outcome.Found = true
			return outcome, nil
		}
	}

	return outcome, nil
}

// ReadRaw normalizes raw and reads it
func (r *Reader) ReadRaw(raw RawImage) (Outcome, error) {
	return r.Read(Normalize(raw))
}

// firstSymbol picks the first non-empty value in decoder order
func firstSymbol(symbols []string) (string, bool) {
	for _, s := range symbols {
		if s != "" {
			return s, true
		}
	}
	return "", false
}
