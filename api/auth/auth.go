package auth

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/synbio-provenance-registry/api"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

const (
	// HeaderSignature carries the hex encoded 65-byte recoverable signature.
	HeaderSignature = "X-Caller-Signature"
	// HeaderTimestamp carries the signing time in unix seconds.
	HeaderTimestamp = "X-Caller-Timestamp"
	// HeaderNonce carries a random hex value making every signed request unique.
	HeaderNonce = "X-Caller-Nonce"

	// DefaultMaxClockSkew bounds how far the signed timestamp may be from the server clock.
	DefaultMaxClockSkew = 5 * time.Minute

	// MaxBodySize bounds the request body read for signature verification.
	MaxBodySize = 1 << 20
)

var (
	ErrMissingSignature = errors.New("missing request signature")
	ErrInvalidSignature = errors.New("invalid request signature")
	ErrStaleTimestamp   = errors.New("request timestamp outside of allowed clock skew")

	// ErrReplayedRequest is returned for a signed request that was already accepted.
	ErrReplayedRequest = fmt.Errorf("%w: request already seen", ErrInvalidSignature)
)

type contextKey struct{}

// WithCaller returns a context carrying the authenticated principal.
func WithCaller(ctx context.Context, caller interfaces.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, caller)
}

// CallerFromContext returns the principal placed by the middleware.
func CallerFromContext(ctx context.Context) (interfaces.Principal, bool) {
	caller, ok := ctx.Value(contextKey{}).(interfaces.Principal)
	return caller, ok
}

// Digest computes the message a caller signs:
// keccak256(method "\n" path "\n" timestamp "\n" nonce "\n" keccak256(body)).
func Digest(method, path string, timestamp int64, nonce string, body []byte) []byte {
	var msg bytes.Buffer
	msg.WriteString(method)
	msg.WriteByte('\n')
	msg.WriteString(path)
	msg.WriteByte('\n')
	msg.WriteString(strconv.FormatInt(timestamp, 10))
	msg.WriteByte('\n')
	msg.WriteString(nonce)
	msg.WriteByte('\n')
	msg.Write(crypto.Keccak256(body))
	return crypto.Keccak256(msg.Bytes())
}

// SignRequest adds the signature headers to req. The body is read and restored.
func SignRequest(req *http.Request, key *ecdsa.PrivateKey, now time.Time) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}

	body, err := readBody(req)
	if err != nil {
		return err
	}

	var nonceBytes [16]byte
	if _, err := rand.Read(nonceBytes[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hexutil.Encode(nonceBytes[:])

	timestamp := now.Unix()
	signature, err := crypto.Sign(Digest(req.Method, req.URL.Path, timestamp, nonce, body), key)
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	req.Header.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	req.Header.Set(HeaderNonce, nonce)
	req.Header.Set(HeaderSignature, hexutil.Encode(signature))
	return nil
}

// PrincipalOf returns the principal that signatures made with key resolve to.
func PrincipalOf(key *ecdsa.PrivateKey) interfaces.Principal {
	return interfaces.Principal(crypto.PubkeyToAddress(key.PublicKey))
}

// Authenticator resolves the calling principal from signed requests.
type Authenticator struct {
	maxClockSkew time.Duration
	now          func() time.Time
	log          *slog.Logger
	seen         *replayCache
}

// NewAuthenticator creates an authenticator. A non-positive maxClockSkew selects DefaultMaxClockSkew.
func NewAuthenticator(maxClockSkew time.Duration, log *slog.Logger) *Authenticator {
	if maxClockSkew <= 0 {
		maxClockSkew = DefaultMaxClockSkew
	}
	return &Authenticator{
		maxClockSkew: maxClockSkew,
		now:          time.Now,
		log:          log,
		seen:         newReplayCache(2 * maxClockSkew),
	}
}

// Authenticate verifies the signature headers and returns the recovered principal.
func (a *Authenticator) Authenticate(r *http.Request) (interfaces.Principal, error) {
	signatureHex := r.Header.Get(HeaderSignature)
	timestampStr := r.Header.Get(HeaderTimestamp)
	nonce := r.Header.Get(HeaderNonce)
	if signatureHex == "" || timestampStr == "" || nonce == "" {
		return interfaces.Principal{}, ErrMissingSignature
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return interfaces.Principal{}, fmt.Errorf("%w: malformed timestamp: %v", ErrInvalidSignature, err)
	}
	skew := a.now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > a.maxClockSkew {
		return interfaces.Principal{}, ErrStaleTimestamp
	}

	signature, err := hexutil.Decode(signatureHex)
	if err != nil {
		return interfaces.Principal{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(signature) != crypto.SignatureLength {
		return interfaces.Principal{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(signature))
	}
	// Accept the legacy 27/28 recovery ids as well.
	if signature[crypto.RecoveryIDOffset] >= 27 {
		signature[crypto.RecoveryIDOffset] -= 27
	}

	body, err := readBody(r)
	if err != nil {
		return interfaces.Principal{}, err
	}

	digest := Digest(r.Method, r.URL.Path, timestamp, nonce, body)
	pubkey, err := crypto.SigToPub(digest, signature)
	if err != nil {
		return interfaces.Principal{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if !a.seen.accept([32]byte(digest), a.now()) {
		return interfaces.Principal{}, ErrReplayedRequest
	}

	return interfaces.Principal(crypto.PubkeyToAddress(*pubkey)), nil
}

// Middleware rejects requests without a valid signature and stores the caller in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := a.Authenticate(r)
		if err != nil {
			a.log.Warn("Authentication failed", "err", err, "method", r.Method, "path", r.URL.Path)
			api.WriteResult(w, a.log, api.Fail(interfaces.CodeUnauthenticated))
			return
		}

		a.log.Debug("Caller authenticated", "caller", caller.String(), "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("request body exceeds %d bytes", MaxBodySize)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
