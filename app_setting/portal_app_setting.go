package app_setting

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// PortalAppSetting customizes the portal's background behavior per
// deployment. Values the scheduler and dispatcher read at startup.
type PortalAppSetting struct {
	// Weekly digest instant: weekday (0 = Sunday ... 6 = Saturday), hour and
	// minute in local time.
	DIGEST_WEEKDAY int `yaml:"DIGEST_WEEKDAY"`
	DIGEST_HOUR    int `yaml:"DIGEST_HOUR"`
	DIGEST_MINUTE  int `yaml:"DIGEST_MINUTE"`
	// Trigger polling cadence in seconds.
	SCHEDULER_POLL_INTERVAL_SECOND int64 `yaml:"SCHEDULER_POLL_INTERVAL_SECOND"`
	// Sleep after a successful fire, must outlast the matching minute.
	SCHEDULER_COOLDOWN_SECOND int64 `yaml:"SCHEDULER_COOLDOWN_SECOND"`
	// Extended sleep after an unexpected trigger error.
	SCHEDULER_ERROR_BACKOFF_SECOND int64 `yaml:"SCHEDULER_ERROR_BACKOFF_SECOND"`
	// Explicit feature flag suppressing immediate new-post notifications.
	// Replaces the old trick of sniffing development auto-reload env vars.
	DISABLE_IMMEDIATE_NOTIFY bool `yaml:"DISABLE_IMMEDIATE_NOTIFY"`
	// Delay in seconds between the post-created event and the fan-out.
	DISPATCH_DELAY_SECOND int64 `yaml:"DISPATCH_DELAY_SECOND"`
	// Site origin used to build absolute post URLs in emails.
	SITE_BASE_URL string `yaml:"SITE_BASE_URL"`
}

func ParsePortalAppSetting(path string) PortalAppSetting {
	c := PortalAppSetting{}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("Unmarshal: ", err)
	}

	return c
}
