package agent

import (
	"context"
	"errors"
	"github.com/Leantar/fimproto/proto"
	"github.com/Leantar/fsewatcher/models"
	"github.com/Leantar/fsewatcher/modules/fsevents"
	"github.com/Leantar/fsewatcher/modules/reporter"
	"github.com/Leantar/fsewatcher/modules/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newTestForwardSink(sent *[]*proto.Event, sendErr error) *forwardSink {
	return &forwardSink{
		send: func(ctx context.Context, evt *proto.Event) error {
			_, ok := ctx.Deadline()
			if !ok {
				return errors.New("missing deadline")
			}
			*sent = append(*sent, evt)
			return sendErr
		},
		stat: func(path string) (models.FsObject, error) {
			if path == "/gone" {
				return models.FsObject{}, errors.New("no such file")
			}
			return models.FsObject{Path: path, Hash: "h", Uid: 501, Mode: 0o100644}, nil
		},
		now: func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func TestForwardSinkCreate(t *testing.T) {
	var sent []*proto.Event
	f := newTestForwardSink(&sent, nil)

	require.NoError(t, f.Write(reporter.Report{Pid: 1, Type: fsevents.TypeCreateFile, Path: "/etc/hosts"}))
	require.Len(t, sent, 1)
	assert.Equal(t, watcher.KindCreate, sent[0].Kind)
	assert.Equal(t, int64(1700000000), sent[0].IssuedAt)
	assert.Equal(t, "/etc/hosts", sent[0].FsObject.Path)
	assert.Equal(t, "h", sent[0].FsObject.Hash)
	assert.Equal(t, uint32(501), sent[0].FsObject.Uid)
}

func TestForwardSinkDeleteSkipsStat(t *testing.T) {
	var sent []*proto.Event
	f := newTestForwardSink(&sent, nil)

	require.NoError(t, f.Write(reporter.Report{Pid: 1, Type: fsevents.TypeDelete, Path: "/etc/hosts"}))
	require.Len(t, sent, 1)
	assert.Equal(t, watcher.KindDelete, sent[0].Kind)
	assert.Empty(t, sent[0].FsObject.Hash)
}

func TestForwardSinkVanishedPath(t *testing.T) {
	var sent []*proto.Event
	f := newTestForwardSink(&sent, nil)

	require.NoError(t, f.Write(reporter.Report{Pid: 1, Type: fsevents.TypeContentModified, Path: "/gone"}))
	require.Len(t, sent, 1)
	assert.Equal(t, watcher.KindChange, sent[0].Kind)
	assert.Equal(t, "/gone", sent[0].FsObject.Path)
}

func TestForwardSinkSendError(t *testing.T) {
	var sent []*proto.Event
	f := newTestForwardSink(&sent, errors.New("unavailable"))

	err := f.Write(reporter.Report{Pid: 1, Type: fsevents.TypeDelete, Path: "/x"})
	require.ErrorContains(t, err, "failed to forward event")
}

func TestCreateGrpcCredentialsMissingCa(t *testing.T) {
	_, err := createGrpcCredentials("cert.pem", "key.pem", "/nonexistent/ca.pem")
	require.Error(t, err)
}
