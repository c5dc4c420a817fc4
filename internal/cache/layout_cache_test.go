package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"busbooking/internal/seatmap"

	"github.com/redis/go-redis/v9"
)

type countingSource struct {
	calls   int
	payload *seatmap.Payload
}

func (s *countingSource) FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error) {
	s.calls++
	return s.payload, nil
}

func samplePayload() *seatmap.Payload {
	p := &seatmap.Payload{}
	p.Lower.Set(0, 0, int(seatmap.Sold), 75050)
	p.Upper.Set(3, 1, int(seatmap.LadiesOnly), 90000)
	return p
}

func TestLayoutKey(t *testing.T) {
	if got := layoutKey(" ka-01-f-1234 "); got != "seat_layout:KA-01-F-1234" {
		t.Fatalf("key = %q", got)
	}
}

func TestLayoutCache_NilClientPassesThrough(t *testing.T) {
	src := &countingSource{payload: samplePayload()}
	c := NewLayoutCache(src, nil, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := c.FetchLayout(context.Background(), "KA-01"); err != nil {
			t.Fatal(err)
		}
	}
	if src.calls != 3 {
		t.Fatalf("calls = %d", src.calls)
	}
	c.Invalidate(context.Background(), "KA-01")
}

func TestLayoutCache_RedisDownFallsBackToSource(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	src := &countingSource{payload: samplePayload()}
	c := NewLayoutCache(src, client, time.Minute)

	p, err := c.FetchLayout(context.Background(), "KA-01")
	if err != nil {
		t.Fatalf("FetchLayout: %v", err)
	}
	if p.Empty() || src.calls != 1 {
		t.Fatalf("payload empty=%v calls=%d", p.Empty(), src.calls)
	}
}

func TestPayloadSurvivesCacheEncoding(t *testing.T) {
	data, err := json.Marshal(samplePayload())
	if err != nil {
		t.Fatal(err)
	}
	var back seatmap.Payload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	g := seatmap.Normalize(&back)
	if c, _ := g.Cell(seatmap.Lower, 0, 0); c.Price != 75050 || c.Status != seatmap.Sold {
		t.Fatalf("lower 0,0 = %+v", c)
	}
	if c, _ := g.Cell(seatmap.Upper, 3, 1); c.Status != seatmap.LadiesOnly {
		t.Fatalf("upper 3,1 = %+v", c)
	}
}
