package avatar

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/loading"
	"github.com/Faultbox/vrmviewer/internal/vrm"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	MaxDepth:                3,
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Avatar *vrm.Avatar
	Err    error
}

// Loader runs the fetch, decode, optimize and convert pipeline for one avatar,
// reporting its lifecycle to a loading manager.
type Loader struct {
	source  Source
	manager *loading.Manager
	log     *zap.Logger
}

// NewLoader creates a loader. A nil log discards output.
func NewLoader(source Source, manager *loading.Manager, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{source: source, manager: manager, log: log}
}

// Load fetches and converts the avatar named id. The asset path stays an
// open item until conversion succeeds, so completion is only reported for a
// usable avatar. On failure the manager is moved to its failed state.
func (l *Loader) Load(ctx context.Context, id string) (*vrm.Avatar, error) {
	path := AssetPath(id)
	log := l.log.With(zap.String("url", path))

	l.manager.ItemStart(path)

	data, err := l.source.Fetch(ctx, path, func(loaded, total int64) {
		l.manager.Bytes(path, loaded, total)
	})
	if err != nil {
		return nil, l.fail(path, fmt.Errorf("fetch: %w", err))
	}
	log.Debug("fetched asset", zap.Int("bytes", len(data)))

	if err := ctx.Err(); err != nil {
		return nil, l.fail(path, err)
	}
	doc, err := vrm.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, l.fail(path, err)
	}
	model, err := vrm.ReadModel(doc, path, l.manager)
	if err != nil {
		return nil, l.fail(path, fmt.Errorf("read model: %w", err))
	}

	vertices := vrm.RemoveUnnecessaryVertices(model)
	joints := vrm.RemoveUnnecessaryJoints(model)
	log.Debug("optimized meshes",
		zap.Int("removedVertices", vertices),
		zap.Int("removedJoints", joints))

	if err := ctx.Err(); err != nil {
		return nil, l.fail(path, err)
	}
	av, err := vrm.FromModel(model)
	if err != nil {
		return nil, l.fail(path, fmt.Errorf("convert: %w", err))
	}

	log.Info("loaded avatar",
		zap.String("title", av.Meta.Title),
		zap.String("author", av.Meta.Author),
		zap.Int("meshes", len(av.Meshes)),
		zap.Int("springJoints", len(av.SpringBones.Joints)))
	if ce := log.Check(zap.DebugLevel, "avatar meta"); ce != nil {
		ce.Write(zap.String("dump", spewConfig.Sdump(av.Meta)))
	}

	l.manager.ItemEnd(path)
	return av, nil
}

// LoadAsync runs Load in a goroutine. The channel yields exactly one result.
func (l *Loader) LoadAsync(ctx context.Context, id string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		av, err := l.Load(ctx, id)
		ch <- Result{Avatar: av, Err: err}
	}()
	return ch
}

func (l *Loader) fail(path string, err error) error {
	l.log.Error("failed to load avatar", zap.String("url", path), zap.Error(err))
	l.manager.ItemError(path, err)
	l.manager.Fail(err)
	return err
}

// Install attaches the avatar to s, turns its hips half a revolution about
// Y so it faces the camera, and resets its spring bones. Avatars without a
// hips bone are attached unrotated.
func Install(s *scene.Scene, av *vrm.Avatar) error {
	if av == nil {
		return fmt.Errorf("install: nil avatar")
	}
	if err := s.Attach(av.Root); err != nil {
		return err
	}
	if hips := av.Humanoid.BoneNode(vrm.Hips); hips != nil {
		r := hips.Rotation()
		r.Y = math.Pi
		hips.SetRotation(r)
	}
	av.SpringBones.Reset()
	return nil
}
