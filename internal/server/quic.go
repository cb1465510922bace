package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/lander/internal/core/observability/log"
)

const (
	transportQUIC = "quic"
	// QUICProtocol is the ALPN name clients must offer.
	QUICProtocol = "lander-quic"
)

func (s *Server) listenQUIC() error {
	tlsConfig, err := generateTLSConfig()
	if err != nil {
		return errors.Wrap(err, "generate tls config")
	}
	quicConfig := &quic.Config{
		MaxIdleTimeout:     s.config.IdleTimeout,
		MaxIncomingStreams: int64(s.config.MaxSessions),
	}

	ln, err := quic.ListenAddr(s.config.QUICAddr, tlsConfig, quicConfig)
	if err != nil {
		s.logger.Error("Failed to create QUIC listener", log.Error(err))
		return errors.Wrap(ErrListenerFailed, err.Error())
	}
	s.quicLn = ln

	s.workers.Add(1)
	go s.acceptQUIC(ln)
	return nil
}

func (s *Server) acceptQUIC(ln *quic.Listener) {
	defer s.workers.Done()
	for {
		conn, err := ln.Accept(s.ctx)
		if err != nil {
			if s.ctx.Err() == nil {
				s.logger.Warn("QUIC accept failed", log.Error(err))
			}
			return
		}
		if !s.track() {
			_ = conn.CloseWithError(0, "server stopping")
			return
		}
		go s.serveQUICConn(conn)
	}
}

// serveQUICConn runs one session per stream the client opens.
func (s *Server) serveQUICConn(conn *quic.Conn) {
	defer s.workers.Done()
	stop := context.AfterFunc(s.ctx, func() {
		_ = conn.CloseWithError(0, "server stopping")
	})
	defer stop()

	remote := conn.RemoteAddr().String()
	s.logger.Debug("QUIC connection accepted", log.String("remote", remote))

	for {
		stream, err := conn.AcceptStream(s.ctx)
		if err != nil {
			s.logger.Debug("QUIC connection closed", log.String("remote", remote), log.Error(err))
			return
		}
		if !s.track() {
			stream.CancelRead(0)
			return
		}
		go s.serveQUICStream(stream)
	}
}

func (s *Server) serveQUICStream(stream *quic.Stream) {
	defer s.workers.Done()
	defer stream.Close()
	defer stream.CancelRead(0)

	sess, err := s.openSession(transportQUIC)
	if err != nil {
		s.logger.Warn("Session rejected", log.Error(err))
		_ = writeFrame(stream, Frame{Error: err.Error()})
		return
	}
	defer s.closeSession(sess)

	if err = serveStream(stream, sess, int(s.config.MaxMessageSize), s.config.IdleTimeout); err != nil && s.ctx.Err() == nil {
		s.logger.Debug("QUIC stream ended", log.String("session", sess.ID()), log.Error(err))
	}
}

// generateTLSConfig builds a self-signed TLS 1.3 config for development.
func generateTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"lander"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:     []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		NextProtos:   []string{QUICProtocol},
		MinVersion:   tls.VersionTLS13,
	}, nil
}
