package pipelines

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var demoRepositories = []string{
	"target/mobile-app",
	"target/payment-service",
	"target/inventory-api",
	"target/web-frontend",
	"target/notification-service",
	"target/user-management",
	"target/analytics-platform",
	"target/search-service",
}

var demoBranches = []string{"main", "develop", "feature/checkout-v2", "hotfix/payment-bug", "feature/mobile-redesign"}

var demoAuthors = []string{"sarah.chen", "mike.rodriguez", "alex.kim", "emma.wilson", "david.park", "lisa.johnson"}

var demoSteps = []string{"Clone Repository", "Install Dependencies", "Run Tests", "Build Application", "Deploy to Staging", "Integration Tests", "Deploy to Production"}

const demoRunCount = 15

// GenerateDemoRuns produces a demo run set across the fixed repositories
// with a mixed status distribution: 8 success, 3 running, 2 failed,
// 2 pending.
func GenerateDemoRuns(rng *rand.Rand, now time.Time) []Pipeline {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	runs := make([]Pipeline, 0, demoRunCount)
	for i := 0; i < demoRunCount; i++ {
		status := demoStatusFor(i)

		var progress *int
		switch status {
		case StatusRunning:
			p := rng.Intn(80) + 10
			progress = &p
		case StatusSuccess:
			p := 100
			progress = &p
		case StatusFailed:
			p := rng.Intn(70) + 20
			progress = &p
		}

		duration := ""
		if status == StatusSuccess || status == StatusFailed {
			duration = fmt.Sprintf("%dm %ds", rng.Intn(20)+2, rng.Intn(60))
		}

		currentStep := ""
		if status == StatusRunning {
			currentStep = demoSteps[rng.Intn(len(demoSteps))]
		}

		runs = append(runs, Pipeline{
			ID:          uuid.NewString(),
			RepoName:    demoRepositories[rng.Intn(len(demoRepositories))],
			Branch:      demoBranches[rng.Intn(len(demoBranches))],
			Status:      status,
			Progress:    progress,
			Duration:    duration,
			Author:      demoAuthors[rng.Intn(len(demoAuthors))],
			CommitHash:  randomCommitHash(rng),
			CurrentStep: currentStep,
			VelaBuildID: fmt.Sprintf("build_%d_%d", now.UnixMilli(), i),
			CreatedAt:   now.Add(-time.Duration(rng.Int63n(int64(48 * time.Hour)))),
			UpdatedAt:   now.Add(-time.Duration(rng.Int63n(int64(time.Hour)))),
		})
	}
	return runs
}

func demoStatusFor(i int) Status {
	switch {
	case i < 8:
		return StatusSuccess
	case i < 11:
		return StatusRunning
	case i < 13:
		return StatusFailed
	default:
		return StatusPending
	}
}

const commitHashAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomCommitHash(rng *rand.Rand) string {
	b := make([]byte, 7)
	for i := range b {
		b[i] = commitHashAlphabet[rng.Intn(len(commitHashAlphabet))]
	}
	return string(b)
}
