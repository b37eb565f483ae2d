package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/pdulite/pdulite"
	"github.com/pdulite/pdulite/schema"
)

func main() {
	p := pdulite.New()

	// Load the PDU definitions shipped alongside the app.
	if err := p.LoadSchema("testdata/protocol.yaml"); err != nil {
		log.Fatalf("Failed to load protocol schema: %v", err)
	}

	fmt.Println("Pdulite Sample App - declarative bit-precise PDU codecs")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Registered PDUs: %v\n\n", p.ListPDUs())

	record := map[string]interface{}{
		"session":  uint64(0x42),
		"body_len": uint64(11),
		"body":     []byte("hello world"),
		"trace_id": uint64(0xA1B2C3D4),
	}

	// The 1.x wire predates the trace_id field.
	for _, version := range []string{"1.0.0", "2.0.0"} {
		encoded, err := p.Encode("Datagram", record, version)
		if err != nil {
			log.Fatalf("Failed to encode at %s: %v", version, err)
		}
		bits, err := p.SizeofPDU("Datagram", record, version, schema.UnitBits)
		if err != nil {
			log.Fatalf("Failed to size at %s: %v", version, err)
		}
		fmt.Printf("%s wire (%d bits): % X\n", version, bits, encoded)

		decoded, rest, err := p.Decode("Datagram", encoded, version)
		if err != nil {
			log.Fatalf("Failed to decode at %s: %v", version, err)
		}
		fmt.Printf("  decoded body=%q trace_id=%v remaining=%d bytes\n",
			decoded["body"], decoded["trace_id"], len(rest))
	}

	// Offset-to fields are filled in automatically before encoding.
	fixed, err := p.SetOffsets("Datagram", record, "")
	if err != nil {
		log.Fatalf("Failed to set offsets: %v", err)
	}
	fmt.Printf("\nbody starts at byte offset %v\n", fixed["body_offset"])
}
