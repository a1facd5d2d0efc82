package runtime

import (
	"errors"
	"fmt"
	"io"
)

// ErrStaleToken is returned when an effect token is consumed out of order:
// reused after it was already consumed, swapped with a later token, or taken
// from another world.
var ErrStaleToken = errors.New("stale effect token")

// World is the outside-world state an effect chain threads through. Each
// Advance consumes the current token and hands out its successor, so a token
// is usable exactly once and every effect happens-before the next one.
type World struct {
	out        io.Writer
	generation uint64
	live       bool
	effects    uint64
}

// NewWorld returns a world writing observable output to out.
func NewWorld(out io.Writer) *World {
	if out == nil {
		out = io.Discard
	}
	return &World{out: out}
}

// Begin starts a new effect chain and returns its first token. Tokens of any
// earlier chain become stale.
func (w *World) Begin() EffectToken {
	w.generation++
	w.live = true
	return EffectToken{Generation: w.generation, world: w}
}

// Advance consumes tok and returns the token that follows it.
func (w *World) Advance(tok Value) (EffectToken, error) {
	t, ok := tok.(EffectToken)
	if !ok {
		return EffectToken{}, fmt.Errorf("expected effect token, got %s", kindName(tok))
	}
	if t.world != w || !w.live {
		return EffectToken{}, fmt.Errorf("%w: token does not belong to this world", ErrStaleToken)
	}
	if t.Generation != w.generation {
		return EffectToken{}, fmt.Errorf("%w: generation %d consumed, current is %d", ErrStaleToken, t.Generation, w.generation)
	}
	w.generation++
	w.effects++
	return EffectToken{Generation: w.generation, world: w}, nil
}

// Current reports whether tok is the token the world expects next.
func (w *World) Current(tok Value) bool {
	t, ok := tok.(EffectToken)
	return ok && t.world == w && w.live && t.Generation == w.generation
}

// Output is where effectful primitives write.
func (w *World) Output() io.Writer {
	return w.out
}

// Effects counts the effects performed since the world was created.
func (w *World) Effects() uint64 {
	return w.effects
}

func kindName(v Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}
