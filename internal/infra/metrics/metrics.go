// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	claimAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_claim_attempts_total",
			Help: "Claim attempts by outcome (granted_new/granted_existing/not_found/revoked/owned_by_other/error).",
		},
		[]string{"outcome"},
	)

	invitesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_invites_issued_total",
			Help: "Invite links issued per flow (start/access) and result (ok/failed).",
		},
		[]string{"flow", "result"},
	)

	keysGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nfc_keys_generated_total",
			Help: "Keys created by admin batch generation.",
		},
	)

	keysRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nfc_keys_revoked_total",
			Help: "Keys revoked by admins.",
		},
	)

	adminCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_admin_commands_total",
			Help: "Admin commands by name and authorization status.",
		},
		[]string{"command", "status"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			claimAttempts, invitesIssued,
			keysGenerated, keysRevoked, adminCommands,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Claim helpers --------

func IncClaimAttempt(outcome string) {
	claimAttempts.WithLabelValues(norm(outcome)).Inc()
}

func IncInviteIssued(flow string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	invitesIssued.WithLabelValues(norm(flow), result).Inc()
}

// -------- Admin helpers --------

func AddKeysGenerated(n int) {
	keysGenerated.Add(float64(n))
}

func IncKeyRevoked() {
	keysRevoked.Inc()
}

func IncAdminCommand(command, status string) {
	adminCommands.WithLabelValues(norm(command), norm(status)).Inc()
}
