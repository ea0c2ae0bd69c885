package avatar

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/vrmviewer/internal/engine/scene"
	"github.com/Faultbox/vrmviewer/internal/loading"
	"github.com/Faultbox/vrmviewer/internal/vrm"
)

// vrmBytes encodes a one-triangle avatar with a hips bone as GLB.
func vrmBytes(t *testing.T, withExtension bool) []byte {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "Body",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{"POSITION": pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "Hips", Translation: [3]float64{0, 1, 0}},
		{Name: "Body", Mesh: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []int{0, 1}

	if withExtension {
		doc.ExtensionsUsed = []string{vrm.ExtensionName}
		doc.Extensions = gltf.Extensions{vrm.ExtensionName: &vrm.Extension{
			Meta: vrm.Meta{Title: "Astolfo"},
			Humanoid: vrm.HumanoidDef{HumanBones: []vrm.HumanBoneDef{
				{Bone: vrm.Hips, Node: 0},
			}},
		}}
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func drain(m *loading.Manager, ch <-chan loading.Event) []loading.Event {
	m.Close()
	var events []loading.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func kinds(events []loading.Event) []loading.Kind {
	out := make([]loading.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestLoadSuccess(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "astolfo", vrmBytes(t, true))

	mgr := loading.NewManager()
	events := mgr.SubscribeBuffered(256)
	av, err := NewLoader(DirSource{Root: root}, mgr, nil).Load(context.Background(), "astolfo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if av.Meta.Title != "Astolfo" {
		t.Errorf("title = %q", av.Meta.Title)
	}

	evs := drain(mgr, events)
	got := kinds(evs)
	want := []loading.Kind{loading.KindStart, loading.KindBytes, loading.KindProgress, loading.KindComplete}
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}

	counts := []struct{ loaded, total int }{{0, 1}, {0, 1}, {1, 1}, {1, 1}}
	for i, c := range counts {
		if evs[i].Loaded != c.loaded || evs[i].Total != c.total {
			t.Errorf("%v event counts = %d/%d, want %d/%d",
				evs[i].Kind, evs[i].Loaded, evs[i].Total, c.loaded, c.total)
		}
	}
	if url := "./models/astolfo.vrm"; evs[0].URL != url || evs[2].URL != url {
		t.Errorf("event urls = %q, %q, want %q", evs[0].URL, evs[2].URL, url)
	}
}

func TestLoadMissingAssetFails(t *testing.T) {
	mgr := loading.NewManager()
	events := mgr.SubscribeBuffered(256)
	_, err := NewLoader(DirSource{Root: t.TempDir()}, mgr, nil).Load(context.Background(), "nobody")
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("got %v, want ErrAssetNotFound", err)
	}

	evs := drain(mgr, events)
	last := evs[len(evs)-1]
	if last.Kind != loading.KindFailed {
		t.Errorf("last event %v, want failed", last.Kind)
	}
	for _, ev := range evs {
		if ev.Kind == loading.KindComplete {
			t.Error("complete reported for a failed load")
		}
	}
}

func TestLoadNonVRMFails(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "plain", vrmBytes(t, false))

	mgr := loading.NewManager()
	events := mgr.SubscribeBuffered(256)
	_, err := NewLoader(DirSource{Root: root}, mgr, nil).Load(context.Background(), "plain")
	if !errors.Is(err, vrm.ErrNotVRM) {
		t.Fatalf("got %v, want ErrNotVRM", err)
	}
	if !mgr.Failed() {
		t.Error("manager should be failed")
	}
	drain(mgr, events)
}

func TestLoadAsyncAndInstall(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "astolfo", vrmBytes(t, true))

	mgr := loading.NewManager()
	events := mgr.SubscribeBuffered(256)
	res := <-NewLoader(DirSource{Root: root}, mgr, nil).LoadAsync(context.Background(), "astolfo")
	if res.Err != nil {
		t.Fatalf("LoadAsync: %v", res.Err)
	}
	drain(mgr, events)

	s := scene.New()
	if s.Avatar() != nil {
		t.Fatal("scene should start without avatar")
	}
	if err := Install(s, res.Avatar); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if s.Avatar() != res.Avatar.Root {
		t.Error("avatar root not attached")
	}

	hips := res.Avatar.Humanoid.BoneNode(vrm.Hips)
	if got := hips.Rotation().Y; got != math.Pi {
		t.Errorf("hips rotation.y = %v, want pi", got)
	}

	if err := Install(s, res.Avatar); !errors.Is(err, scene.ErrAvatarAttached) {
		t.Errorf("second install: got %v, want ErrAvatarAttached", err)
	}
}

func TestInstallNil(t *testing.T) {
	if err := Install(scene.New(), nil); err == nil {
		t.Error("expected error for nil avatar")
	}
}
