package generation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zhubert/imagine/internal/backend"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/session"
)

// Bounds for the image count slider.
const (
	MinImages     = 1
	MaxImages     = 4
	DefaultImages = 4
	RandomSeed    = -1
)

// Request is one generation submission, built fresh from the form each time.
type Request struct {
	Prompt          string
	ImageCount      int
	Seed            int
	AspectRatio     string
	ModelName       string
	SavePreference  bool
	ReferenceImages []string
}

// NewRequest returns a request with the form defaults.
func NewRequest(prompt string) Request {
	return Request{
		Prompt:      prompt,
		ImageCount:  DefaultImages,
		Seed:        RandomSeed,
		AspectRatio: session.AspectRatios[0],
	}
}

// Validate checks everything that can be rejected without the server.
func (r Request) Validate(catalog *session.Catalog) error {
	const op = pErrors.Op("generation.Validate")

	if strings.TrimSpace(r.Prompt) == "" {
		return pErrors.EmptyPrompt()
	}
	if r.ImageCount < MinImages || r.ImageCount > MaxImages {
		return pErrors.E(op, pErrors.KindInvalid,
			fmt.Sprintf("Number of images must be between %d and %d.", MinImages, MaxImages))
	}
	if r.Seed < RandomSeed {
		return pErrors.E(op, pErrors.KindInvalid, "Seed must be -1 (random) or a positive number.")
	}
	if !slices.Contains(session.AspectRatios, r.AspectRatio) {
		return pErrors.E(op, pErrors.KindInvalid, fmt.Sprintf("Unknown aspect ratio %q.", r.AspectRatio))
	}
	if len(r.ReferenceImages) > session.MaxReferences {
		return pErrors.CapacityReached(session.MaxReferences)
	}
	if catalog != nil && catalog.RequiresReference(r.ModelName) && len(r.ReferenceImages) == 0 {
		return pErrors.E(op, pErrors.KindInvalid,
			fmt.Sprintf("The model '%s' requires a reference image.", r.ModelName))
	}
	return nil
}

func (r Request) toBackend() backend.GenerateRequest {
	refs := slices.Clone(r.ReferenceImages)
	if refs == nil {
		refs = []string{}
	}
	return backend.GenerateRequest{
		Prompt:           r.Prompt,
		NumImages:        r.ImageCount,
		Seed:             r.Seed,
		AspectRatio:      r.AspectRatio,
		ModelNameDisplay: r.ModelName,
		SaveImages:       r.SavePreference,
		ReferenceImages:  refs,
	}
}

// Columns returns how many grid columns n results use.
func Columns(n int) int {
	switch {
	case n <= 1:
		return 1
	case n >= 4:
		return 4
	default:
		return n
	}
}

// LayoutClass names the grid layout for n results, "cols-1" to "cols-4".
func LayoutClass(n int) string {
	return fmt.Sprintf("cols-%d", Columns(n))
}

// GeneratedMessage is the success notification for n images.
func GeneratedMessage(n int) string {
	if n == 1 {
		return "1 image generated."
	}
	return fmt.Sprintf("%d images generated.", n)
}

// QueueText describes a queue position to the user.
func QueueText(position int) string {
	switch {
	case position > 1:
		return fmt.Sprintf("%d turns ahead of you...", position)
	case position == 1:
		return "1 turn ahead of you..."
	case position == 0:
		return "It's your turn! Starting soon..."
	default:
		return "Generating your images..."
	}
}
