// Package main provides a Dagger module for building and publishing the
// steamfriends server image.
package main

import (
	"context"
	"dagger/steamfriends/internal/dagger"
	"fmt"
	"strings"
)

const goImage = "golang:1.24.2-alpine"

type Steamfriends struct{}

// builder returns a Go container with the source mounted and module caches attached.
func builder(src *dagger.Directory) *dagger.Container {
	return dag.Container().
		From(goImage).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithDirectory("/src", src).
		WithWorkdir("/src").
		WithEnvVariable("CGO_ENABLED", "0")
}

// Test runs the unit tests.
func (m *Steamfriends) Test(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
) (string, error) {
	return builder(src).
		WithExec([]string{"go", "test", "./..."}).
		Stdout(ctx)
}

// BuildContainer creates a container image running `steamfriends serve`.
func (m *Steamfriends) BuildContainer(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
	// Platform to build for
	// +optional
	// +default="linux/amd64"
	platform *dagger.Platform,
) (*dagger.Container, error) {
	buildPlatform := dagger.Platform("linux/amd64")
	if platform != nil {
		buildPlatform = *platform
	}

	platformArch, err := dag.Containerd().ArchitectureOf(ctx, buildPlatform)
	if err != nil {
		return nil, fmt.Errorf("failed to get architecture: %w", err)
	}

	buildCtr := builder(src).
		WithEnvVariable("GOOS", "linux").
		WithEnvVariable("GOARCH", platformArch).
		WithExec([]string{"apk", "add", "--no-cache", "upx", "ca-certificates"}).
		WithExec([]string{"mkdir", "-p", "/src/bin", "/src/logs", "/src/data"}).
		WithExec([]string{
			"go", "build",
			"-ldflags=-s -w",
			"-o", "/src/bin/steamfriends",
			"./cmd/steamfriends",
		}).
		WithExec([]string{"upx", "--best", "--lzma", "/src/bin/steamfriends"})

	return dag.Container(dagger.ContainerOpts{Platform: buildPlatform}).
		From("gcr.io/distroless/static-debian12:latest").
		WithDirectory("/app/bin", buildCtr.Directory("/src/bin")).
		WithDirectory("/app/logs", buildCtr.Directory("/src/logs")).
		WithDirectory("/app/data", buildCtr.Directory("/src/data")).
		WithFile("/etc/ssl/certs/ca-certificates.crt", buildCtr.File("/etc/ssl/certs/ca-certificates.crt")).
		WithWorkdir("/app").
		WithExposedPort(8080).
		WithEntrypoint([]string{"/app/bin/steamfriends"}).
		WithDefaultArgs([]string{"serve"}), nil
}

// Publish builds the image for each platform and pushes a multi-arch manifest.
func (m *Steamfriends) Publish(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
	// Docker image name (e.g. "username/repo:tag")
	// +required
	imageName string,
	// Platforms to build for (comma-separated, e.g. "linux/amd64,linux/arm64")
	// +optional
	// +default="linux/amd64"
	platforms string,
) (string, error) {
	var platformList []dagger.Platform
	if platforms == "" {
		platformList = []dagger.Platform{"linux/amd64"}
	} else {
		for _, p := range strings.Split(platforms, ",") {
			platformList = append(platformList, dagger.Platform(strings.TrimSpace(p)))
		}
	}

	platformVariants := make([]*dagger.Container, 0, len(platformList))
	for _, platform := range platformList {
		container, err := m.BuildContainer(ctx, src, &platform)
		if err != nil {
			return "", fmt.Errorf("failed to build container for %s: %w", platform, err)
		}
		platformVariants = append(platformVariants, container)
	}

	ref, err := dag.Container().Publish(ctx, imageName, dagger.ContainerPublishOpts{
		PlatformVariants: platformVariants,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish image: %w", err)
	}

	return ref, nil
}

// Run builds the program and runs one of its commands with the given config directory.
func (m *Steamfriends) Run(
	// Source code directory
	// +required
	src *dagger.Directory,
	// Config directory containing config.toml
	// +required
	configDir *dagger.Directory,
	// Command to run: "serve" or "inspect"
	// +optional
	// +default="serve"
	cmd string,
	// Steam ID for the inspect command
	// +optional
	steamID string,
) *dagger.Container {
	args := []string{"/src/bin/steamfriends", cmd}
	if cmd == "inspect" && steamID != "" {
		args = append(args, steamID)
	}

	return builder(src).
		WithDirectory("/etc/steamfriends/config", configDir).
		WithExec([]string{"apk", "add", "--no-cache", "ca-certificates"}).
		WithExec([]string{"go", "build", "-o", "/src/bin/steamfriends", "./cmd/steamfriends"}).
		WithExec(args)
}
