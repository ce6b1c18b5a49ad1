package agent

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"github.com/Leantar/fimproto/proto"
	"github.com/Leantar/fsewatcher/models"
	"github.com/Leantar/fsewatcher/modules/reporter"
	"github.com/Leantar/fsewatcher/modules/watcher"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const forwardTimeout = 10 * time.Second

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int64  `yaml:"port"`
	CertFile    string `yaml:"cert_file"`
	CertKeyFile string `yaml:"cert_key_file"`
	CaFile      string `yaml:"ca_file"`
}

func (a *Agent) dial(conf ServerConfig) (reporter.Sink, error) {
	creds, err := createGrpcCredentials(conf.CertFile, conf.CertKeyFile, conf.CaFile)
	if err != nil {
		return nil, err
	}

	address := net.JoinHostPort(conf.Host, strconv.FormatInt(conf.Port, 10))

	a.conn, err = grpc.Dial(address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	log.Info().Msgf("forwarding reports to %s", address)

	client := proto.NewFimClient(a.conn)

	return &forwardSink{
		send: func(ctx context.Context, evt *proto.Event) error {
			_, err := client.ReportFsEvent(ctx, evt)
			return err
		},
		stat: models.NewFsObject,
		now:  time.Now,
	}, nil
}

// forwardSink sends every report to the FIM server as a filesystem event.
type forwardSink struct {
	send func(ctx context.Context, evt *proto.Event) error
	stat func(path string) (models.FsObject, error)
	now  func() time.Time
}

func (f *forwardSink) Write(r reporter.Report) error {
	kind := watcher.Kind(r.Type)

	obj := models.FsObject{Path: r.Path}
	if kind != watcher.KindDelete {
		o, err := f.stat(r.Path)
		if err != nil {
			// The path may be gone again by the time it is reported.
			log.Debug().Err(err).Str("path", r.Path).Msg("failed to stat reported path")
		} else {
			obj = o
		}
	}

	evt := &proto.Event{
		Kind:     kind,
		IssuedAt: f.now().Unix(),
		FsObject: &proto.FsObject{
			Path:     obj.Path,
			Hash:     obj.Hash,
			Created:  obj.Created,
			Modified: obj.Modified,
			Uid:      obj.Uid,
			Gid:      obj.Gid,
			Mode:     obj.Mode,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
	defer cancel()

	err := f.send(ctx, evt)
	if err != nil {
		return fmt.Errorf("failed to forward event: %w", err)
	}

	return nil
}

func createGrpcCredentials(certPath, keyPath, caPath string) (credentials.TransportCredentials, error) {
	caFile, err := filepath.Abs(caPath)
	if err != nil {
		return nil, err
	}

	caBytes, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}

	certFile, err := filepath.Abs(certPath)
	if err != nil {
		return nil, err
	}

	keyFile, err := filepath.Abs(keyPath)
	if err != nil {
		return nil, err
	}

	pool := x509.NewCertPool()
	ok := pool.AppendCertsFromPEM(caBytes)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s", caFile)
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}

	return credentials.NewTLS(&tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
	}), nil
}
