package gfx

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "wait", "frames": 3},
			{"action": "resize", "width": 320, "height": 240},
			{"action": "exit"}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "wait" || runner.steps[1].Frames != 3 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Width != 320 || runner.steps[2].Height != 240 {
		t.Error("step 2 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	for _, src := range []string{
		`not json`,
		`{"steps": []}`,
		`{"steps": [{"action": "click", "x": 1}]}`,
		`{"steps": [{"action": "resize"}]}`,
	} {
		if _, err := LoadTestScript([]byte(src)); err == nil {
			t.Errorf("expected error for %s", src)
		}
	}
}

func TestRunnerStep_WaitScreenshotExit(t *testing.T) {
	d := newTestDevice(t)
	q := NewEventQueue(640, 480)
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "wait", "frames": 2},
		{"action": "screenshot", "label": "after"},
		{"action": "exit"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	runner.step(d, q) // wait, frame 1
	runner.step(d, q) // wait, frame 2
	if len(d.frames[d.cur].screenshots) != 0 {
		t.Fatal("screenshot taken during wait")
	}
	runner.step(d, q)
	if got := d.frames[d.cur].screenshots; len(got) != 1 || got[0] != "after" {
		t.Fatalf("screenshots = %v", got)
	}
	if runner.Done() {
		t.Fatal("runner done before exit step")
	}
	runner.step(d, q)
	if !runner.Done() {
		t.Error("runner should be done")
	}
	if !q.ProcessEvents() {
		t.Error("exit step should request exit")
	}
}

func TestRunnerStep_Resize(t *testing.T) {
	d := newTestDevice(t)
	q := NewEventQueue(640, 480)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "resize", "width": 100, "height": 50}]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(d, q)
	q.ProcessEvents()
	if w, h := q.Size(); w != 100 || h != 50 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}
