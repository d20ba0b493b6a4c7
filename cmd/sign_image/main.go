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

// sign_image creates signing keys and signs PowerPC images for the SD card.
//
// Usage:
//   go run ./cmd/sign_image --key_name=starlet --out_priv=key.priv --out_pub=key.pub
//   go run ./cmd/sign_image --private_key_file=key.priv --image=/tmp/sd/openbios.elf
//   go run ./cmd/sign_image --public_key_file=key.pub --image=/tmp/sd/openbios.elf
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/cmd/sign_image/impl"
)

var (
	keyType  = flag.String("key_type", "ed25519", "Type of key to generate or verify with: ed25519 or ecdsa.")
	keyName  = flag.String("key_name", "", "Name for a new key identity.")
	outPriv  = flag.String("out_priv", "", "Output file for a new private key.")
	outPub   = flag.String("out_pub", "", "Output file for a new public key.")
	privFile = flag.String("private_key_file", "", "Private key to sign --image with.")
	pubFile  = flag.String("public_key_file", "", "Public key to verify the signature of --image against.")
	image    = flag.String("image", "", "Path to the image.")
)

func main() {
	flag.Parse()

	switch {
	case *keyName != "":
		if len(*outPriv) == 0 || len(*outPub) == 0 {
			glog.Exit("--out_priv and --out_pub required.")
		}
		if err := impl.GenerateKeys(impl.KeyOpts{Type: *keyType, Name: *keyName, OutPriv: *outPriv, OutPub: *outPub}); err != nil {
			glog.Exit(err)
		}
	case *privFile != "":
		sig, err := impl.Sign(impl.SignOpts{PrivKeyFile: *privFile, ImagePath: *image})
		if err != nil {
			glog.Exitf("Failed to sign: %v", err)
		}
		glog.Infof("Wrote %s", sig)
	case *pubFile != "":
		if err := impl.Verify(*keyType, *pubFile, *image); err != nil {
			glog.Exitf("Verification failed: %v", err)
		}
		glog.Info("Signature OK")
	default:
		glog.Exit("One of --key_name, --private_key_file or --public_key_file required.")
	}
}
