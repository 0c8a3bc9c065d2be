/*
Package redisstats publishes statistics snapshots of models to redis.
*/
package redisstats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/redis.v5"

	"github.com/jjbrophy47/dare/stats"
)

/*
SnapshotEncodeDecoder is an interface for objects that allow encoding
snapshots into slices of bytes and decoding them back.
*/
type SnapshotEncodeDecoder interface {
	Encode(stats.Snapshot) ([]byte, error)
	Decode([]byte) (stats.Snapshot, error)
}

type jsonEncodeDecoder struct{}

// JSON returns a SnapshotEncodeDecoder using the encoding/json format.
func JSON() SnapshotEncodeDecoder {
	return jsonEncodeDecoder{}
}

func (jsonEncodeDecoder) Encode(s stats.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func (jsonEncodeDecoder) Decode(data []byte) (stats.Snapshot, error) {
	var s stats.Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}

// Publisher stores the snapshots of models under prefixed keys.
type Publisher struct {
	rc     *redis.Client
	prefix string
	encdec SnapshotEncodeDecoder
}

// New builds a Publisher storing snapshots on the given redis client.
func New(rc *redis.Client, prefix string, encdec SnapshotEncodeDecoder) *Publisher {
	return &Publisher{rc, prefix, encdec}
}

/*
Publish takes a model name and its statistics source and stores its add
and removal snapshots, replacing any previous ones.
*/
func (p *Publisher) Publish(ctx context.Context, name string, src stats.Source) error {
	histories := []struct {
		name     string
		snapshot stats.Snapshot
	}{
		{"add", src.AddStatistics()},
		{"removal", src.RemovalStatistics()},
	}
	for _, h := range histories {
		history, s := h.name, h.snapshot
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := p.encdec.Encode(s)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s statistics", name, history)
		}
		err = p.rc.Set(p.keyFor(name, history), data, 0).Err()
		if err != nil {
			return errors.Wrapf(err, "publishing %s %s statistics to redis", name, history)
		}
	}
	return nil
}

/*
Fetch takes a model name and a history and returns the snapshot stored for
them. It returns a nil snapshot when there is none.
*/
func (p *Publisher) Fetch(ctx context.Context, name, history string) (*stats.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := p.rc.Get(p.keyFor(name, history)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "retrieving %s %s statistics", name, history)
	}
	s, err := p.encdec.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s %s statistics %q", name, history, data)
	}
	return &s, nil
}

func (p *Publisher) keyFor(name, history string) string {
	return fmt.Sprintf("%s:%s:%s", p.prefix, name, history)
}
