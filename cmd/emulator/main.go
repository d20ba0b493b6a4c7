// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// emulator runs the Starlet control core against a simulated Hollywood.
//
// The SD card is served from a host directory or an ext4 image, and a YAML
// script plays the part of the Broadway once the core enters its service
// loop.
//
// Usage:
//   go run ./cmd/emulator --logtostderr --sd_dir=/tmp/sd --script=frames.yaml --listen=:8080
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/cmd/emulator/impl"
)

var (
	sdDir           = flag.String("sd_dir", "", "Directory to serve as the SD card")
	sdImage         = flag.String("sd_image", "", "ext4 image to serve as the SD card")
	partitionOffset = flag.Int64("partition_offset", 0, "Byte offset of the filesystem within --sd_image, or -1 to use the first MBR partition")
	compat          = flag.Bool("compat", false, "Set the GameCube compatibility strap")
	boot2Vector     = flag.Uint("boot2_vector", 0xffff0000, "Address returned by the emulated boot2 when it is asked to launch a title")
	publicKeyFile   = flag.String("public_key_file", "", "File containing the verifier key which boot images must be signed with")
	publicKeyType   = flag.String("public_key_type", "ed25519", "Type of the key in --public_key_file: ed25519 or ecdsa")
	script          = flag.String("script", "", "YAML script run by the emulated Broadway")
	listen          = flag.String("listen", "", "address:port to serve the debug HTTP interface on")
)

func main() {
	flag.Parse()

	var pubKey string
	if *publicKeyFile != "" {
		b, err := os.ReadFile(*publicKeyFile)
		if err != nil {
			glog.Exitf("Failed to read public key: %v", err)
		}
		pubKey = strings.TrimSpace(string(b))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	r, err := impl.Main(ctx, impl.Opts{
		SDDir:           *sdDir,
		SDImage:         *sdImage,
		PartitionOffset: *partitionOffset,
		Compat:          *compat,
		Boot2Vector:     uint32(*boot2Vector),
		PublicKey:       pubKey,
		KeyType:         *publicKeyType,
		ScriptPath:      *script,
		Listen:          *listen,
	})
	if err != nil {
		glog.Exitf("Emulator: %v", err)
	}
	glog.Infof("Starlet finished: boot %v, Hollywood %v", r.Outcome, r.Halt)
}
