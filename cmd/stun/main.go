// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package main implements the stun CLI: a Binding client when given a URL,
// or a Binding server otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webrtcstun/stun/client"
	"github.com/webrtcstun/stun/server"
)

func main() {
	port := flag.Int("port", 3478, "Listening port (server mode).")
	flag.Parse()

	if url := flag.Arg(0); url != "" {
		os.Exit(runClient(url))

		return
	}

	os.Exit(runServer(*port))
}

func runClient(addr string) int {
	c, err := client.New(client.Config{STUNServerAddr: addr})
	if err != nil {
		log.Printf("stun: %v", err)

		return 1
	}
	defer c.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reflexive, err := c.Binding(ctx)
	if err != nil {
		log.Printf("stun: %v", err)

		return 1
	}

	fmt.Println(reflexive.String())

	return 0
}

func runServer(port int) int {
	conn, err := net.ListenPacket("udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		log.Printf("stun: %v", err)

		return 1
	}

	s, err := server.New(server.Config{Conn: conn})
	if err != nil {
		log.Printf("stun: %v", err)

		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		_ = s.Close()
	case err := <-errCh:
		if err != nil {
			log.Printf("stun: %v", err)

			return 1
		}
	}

	return 0
}
