// Command chunkarray inspects chunked datasets stored on local disk, S3 or
// MinIO.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
