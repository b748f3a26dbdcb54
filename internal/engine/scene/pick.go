package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgl/internal/engine/mapper"
)

// Target is an offscreen render target that can be read back.
type Target interface {
	Bind() (restore func())
	Clear()
	ReadPixel(x, y int32) [4]byte
}

// Hit is the result of a pick.
type Hit struct {
	Actor *Actor
	// Primitive is the index of the GPU primitive under the cursor within
	// its draw call, -1 when the id pass found nothing.
	Primitive int
}

// Pick renders two selection passes into t: a prop pass that identifies
// the actor under (x, y), then a low id pass over that actor alone.
func (s *Scene) Pick(t Target, view, proj mgl32.Mat4, x, y int32) (Hit, bool, error) {
	restore := t.Bind()
	defer restore()

	sel := mapper.NewSelection(0)
	t.Clear()
	for _, a := range s.order() {
		sel.PickID = a.PickID
		if _, err := a.Mapper.Render(s.frame(a, view, proj, sel)); err != nil {
			return Hit{}, false, err
		}
	}
	a := s.ActorByPickID(mapper.ColorToID(t.ReadPixel(x, y)))
	if a == nil {
		return Hit{}, false, nil
	}

	sel.Pass = mapper.PassIDLow24
	sel.Modified()
	t.Clear()
	if _, err := a.Mapper.Render(s.frame(a, view, proj, sel)); err != nil {
		return Hit{}, false, err
	}
	hit := Hit{Actor: a, Primitive: int(mapper.ColorToID(t.ReadPixel(x, y))) - 1}
	s.log.Debug("picked", zap.String("actor", a.Name), zap.Int("primitive", hit.Primitive))
	return hit, true, nil
}
