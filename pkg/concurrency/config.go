// Package concurrency provides environment-driven concurrency configuration
// and a semaphore-based admission limiter for the planning service.
package concurrency

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// ConfigSource indicates where the configuration came from
type ConfigSource string

const (
	ConfigSourceEnvVar     ConfigSource = "environment_variable"
	ConfigSourceAutoDetect ConfigSource = "auto_detect"
)

// Config holds concurrency configuration parameters
type Config struct {
	// PlannerThreads is the default worker-thread count for a planner.
	PlannerThreads int

	// ServiceRequests is the maximum number of plan requests the planning
	// service handles concurrently.
	ServiceRequests int

	Source        ConfigSource
	IsKubernetes  bool
	EffectiveCPUs int
}

// LoadConfig loads concurrency configuration with priority: env vars > auto-detection
func LoadConfig() *Config {
	config := &Config{}

	config.IsKubernetes = isKubernetes()

	// Effective CPUs respect cgroup limits
	config.EffectiveCPUs = runtime.GOMAXPROCS(0)

	if threads := getEnvInt("DAEDALUS_PLANNER_THREADS", 0); threads > 0 {
		config.PlannerThreads = threads
		config.Source = ConfigSourceEnvVar
	} else {
		// Planner workers are CPU bound: one per effective CPU, never more.
		config.PlannerThreads = config.EffectiveCPUs
		config.Source = ConfigSourceAutoDetect
	}
	if config.PlannerThreads < 1 {
		config.PlannerThreads = 1
	}

	if requests := getEnvInt("DAEDALUS_SERVICE_REQUESTS", 0); requests > 0 {
		config.ServiceRequests = requests
	} else if config.IsKubernetes {
		// Conservative in Kubernetes to prevent resource exhaustion
		config.ServiceRequests = max(config.EffectiveCPUs/2, 1)
	} else {
		config.ServiceRequests = max(config.EffectiveCPUs, 2)
	}

	return config
}

// isKubernetes detects if the application is running in Kubernetes
func isKubernetes() bool {
	// Kubernetes sets this environment variable in all containers
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// getEnvInt retrieves an integer from environment variable with default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// String returns a formatted string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{PlannerThreads: %d, ServiceRequests: %d, IsK8s: %t, CPUs: %d, Source: %s}",
		c.PlannerThreads,
		c.ServiceRequests,
		c.IsKubernetes,
		c.EffectiveCPUs,
		c.Source,
	)
}
