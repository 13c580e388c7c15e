// Command client is a small flag-driven CLI for sending
// NewOrder/CancelOrder/AmendOrder frames to a running fenrir server
// and printing whatever reports come back, modeled directly on the
// teacher's cmd/client/client.go (flag.String-based CLI, async report
// reader goroutine), rewired onto the publisher package's wire frames
// instead of internal/net's AssetType/UUID-keyed protocol.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"fenrir/internal/model"
	"fenrir/internal/publisher"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the exchange server")
	owner := flag.String("owner", "", "owner username (compulsory)")
	action := flag.String("action", "place", "action to perform: ['place', 'cancel', 'amend']")

	symbol := flag.String("symbol", "BTC-USD", "symbol (max 8 chars)")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	price := flag.Float64("price", 100.0, "limit price (0 for a market order)")
	size := flag.Float64("size", 1.0, "order size")

	orderID := flag.Uint64("order-id", 0, "order id, for -action=cancel or -action=amend")

	flag.Parse()

	if *owner == "" {
		fmt.Println("Error: -owner is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s as '%s'\n", *serverAddr, *owner)

	go readReports(conn)

	side := model.Bid
	if strings.EqualFold(*sideStr, "sell") {
		side = model.Ask
	}

	switch strings.ToLower(*action) {
	case "place":
		frame := publisher.EncodeNewOrder(publisher.NewOrderRequest{
			Symbol:   *symbol,
			Side:     side,
			Price:    *price,
			Size:     *size,
			Username: *owner,
		})
		if _, err := conn.Write(frame); err != nil {
			log.Fatalf("failed to place order: %v", err)
		}
		fmt.Printf("-> sent %s order: %s %.4f @ %.4f\n", strings.ToUpper(*sideStr), *symbol, *size, *price)

	case "cancel":
		if *orderID == 0 {
			log.Fatal("Error: -order-id is required for -action=cancel")
		}
		frame := publisher.EncodeCancelOrder(publisher.CancelOrderRequest{Symbol: *symbol, OrderID: *orderID})
		if _, err := conn.Write(frame); err != nil {
			log.Fatalf("failed to send cancel request: %v", err)
		}
		fmt.Printf("-> sent cancel request for order id: %d\n", *orderID)

	case "amend":
		if *orderID == 0 {
			log.Fatal("Error: -order-id is required for -action=amend")
		}
		frame := publisher.EncodeAmendOrder(publisher.AmendOrderRequest{Symbol: *symbol, OrderID: *orderID, NewSize: *size})
		if _, err := conn.Write(frame); err != nil {
			log.Fatalf("failed to send amend request: %v", err)
		}
		fmt.Printf("-> sent amend request for order id: %d, new size: %.4f\n", *orderID, *size)

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("\nlistening for reports... (press Ctrl+C to exit)")
	select {}
}

// readReports prints whatever bytes the server sends back. The
// gateway's current report format is a single human-readable line per
// event rather than the teacher's fixed-width Report struct, so this
// simply streams and prints lines.
func readReports(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Printf("connection lost: %v", err)
			os.Exit(0)
		}
		fmt.Printf("\n[REPORT] %s\n", string(buf[:n]))
	}
}
