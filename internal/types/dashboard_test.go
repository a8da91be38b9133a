package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusSnapshot_JSONFieldNames(t *testing.T) {
	snap := StatusSnapshot{
		ThreatLevel: "normal",
		Agents: map[string]DashboardAgent{
			"watcher": {Status: DashboardActive, LastUpdate: time.Now()},
		},
		SystemMetrics: SystemMetrics{CPUUsage: 45, ActiveConnections: 847},
		AzureServices: map[string]AzureService{
			"key_vault": {Name: "Azure Key Vault", Status: "connected", Secrets: 45, Certificates: 8},
		},
		DigitalTwin: DigitalTwin{ApplicationHealth: 95},
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(top["threat_level"]) != `"normal"` {
		t.Errorf("threat_level = %s", top["threat_level"])
	}
	raw := make(map[string]map[string]interface{})
	for _, key := range []string{"system_metrics", "digital_twin", "azure_services", "agents"} {
		var obj map[string]interface{}
		if err := json.Unmarshal(top[key], &obj); err != nil {
			t.Fatalf("Unmarshal %s: %v", key, err)
		}
		raw[key] = obj
	}
	if _, ok := raw["system_metrics"]["active_connections"]; !ok {
		t.Error("system_metrics.active_connections missing")
	}
	if _, ok := raw["digital_twin"]["application_health"]; !ok {
		t.Error("digital_twin.application_health missing")
	}
	kv, ok := raw["azure_services"]["key_vault"].(map[string]interface{})
	if !ok {
		t.Fatalf("azure_services.key_vault missing: %s", data)
	}
	if _, ok := kv["alerts"]; ok {
		t.Error("key_vault should not carry sentinel-only alerts field")
	}
	if kv["secrets"] != float64(45) {
		t.Errorf("key_vault.secrets = %v", kv["secrets"])
	}
	watcher, ok := raw["agents"]["watcher"].(map[string]interface{})
	if !ok || watcher["status"] != "active" || watcher["last_update"] == nil {
		t.Errorf("agents.watcher = %v", raw["agents"]["watcher"])
	}
}

func TestThreatRecord_JSONFieldNames(t *testing.T) {
	rec := ThreatRecord{ID: "threat_1", Type: "ddos", Severity: "high", Status: ThreatDetected}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, k := range []string{"id", "type", "severity", "timestamp", "description", "source", "target", "status"} {
		if _, ok := raw[k]; !ok {
			t.Errorf("field %q missing", k)
		}
	}
	if raw["status"] != "detected" {
		t.Errorf("status = %q", raw["status"])
	}
}
