// jpth_sim serves a simulated JPTH-13M-PoE head for development, so
// the bridge can be exercised without hardware.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/w1xm/ptz_interface/jpth"
)

var (
	addr    = flag.String("addr", "127.0.0.1:8080", "listen address")
	corrupt = flag.Bool("corrupt", false, "garble responses after </AutoPatrol> like a busy head")
)

func main() {
	flag.Parse()
	sim := jpth.NewSimulator()
	sim.SetCorrupt(*corrupt)
	log.Printf("simulated head listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, sim))
}
