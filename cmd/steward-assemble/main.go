package main

import (
	"flag"
	"log"

	"steward/internal/core/image"
	"steward/internal/core/service"
	"steward/internal/env"
	"steward/internal/utils"
)

func main() {
	manifestPath := flag.String("manifest", utils.ServiceManifestPath, "path to the service manifest")
	flag.Parse()

	// == bootstrap ==
	bootstrap := env.NewBootstrapManager()
	if err := bootstrap.SetupRuntime(); err != nil {
		log.Fatal(err)
	}

	// == service manifest ==
	manifest, err := service.LoadManifest(*manifestPath)
	if err != nil {
		log.Fatal(err)
	}

	// == assemble ==
	assembler := image.NewImageService()
	imageId, err := assembler.Assemble(manifest.Build)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[*] image assembled: id=%s name=%s", imageId, manifest.Build.Name)
}
