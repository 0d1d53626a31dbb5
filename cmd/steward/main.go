package main

import (
	"context"
	"log"
	"net/http"

	httpapi "steward/internal/api/http"
	"steward/internal/core/health"
	"steward/internal/core/service"
	"steward/internal/env"
	"steward/internal/monitor"
	"steward/internal/store/hsm"
	"steward/internal/utils"
)

func main() {
	// == bootstrap ==
	bootstrap := env.NewBootstrapManager()
	if err := bootstrap.SetupRuntime(); err != nil {
		log.Fatal(err)
	}

	// == service manifest ==
	manifest, err := service.LoadManifest(utils.ServiceManifestPath)
	if err != nil {
		log.Fatal(err)
	}

	// == health probe loop ==
	// built before boot: launch and relaunch paths reset the tracker so
	// every process generation starts in its own grace window.
	probeWriter, err := utils.NewJsonlWriter(utils.ProbeLogPath)
	if err != nil {
		log.Fatal(err)
	}
	defer probeWriter.Close()

	broadcaster := health.NewBroadcaster()
	probeLoop := health.NewProbeLoop(
		manifest.Policy,
		health.NewHttpProber(manifest.LivenessEndpoint()),
		hsm.NewHsmManager(hsm.NewHsmStore(utils.HsmStorePath)),
		probeWriter,
		broadcaster,
	)

	// == service boot ==
	// ownership, privilege drop, launch. Any failure here is fatal and
	// happens before the service port is bound.
	supervisor := service.NewSupervisorService(manifest)
	supervisor.AttachProbeResetter(probeLoop)
	serviceId, err := supervisor.Boot()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[*] service booted: id=%s", serviceId)

	// == rest api ==
	// start Management Server
	managementAddr := "127.0.0.1:7755"
	managementRouter := httpapi.NewApiRouter(supervisor, broadcaster)
	go func() {
		log.Printf("[*] management server listening on %s", managementAddr)
		if err := http.ListenAndServe(managementAddr, managementRouter); err != nil {
			log.Fatal(err)
		}
	}()

	// == process monitoring ==
	go func() {
		log.Println("[*] Service Monitoring Start")
		processMonitoring := monitor.NewProcessMonitor()
		processMonitoring.AttachProbeResetter(probeLoop)
		if err := processMonitoring.Start(context.Background()); err != nil {
			log.Printf("monitoring stopped: %v", err)
		}
	}()

	// == health probing ==
	log.Println("[*] Health Probing Start")
	if err := probeLoop.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
