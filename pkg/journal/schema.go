package journal

import "fmt"

// EventKey returns the Redis key for a single event hash.
// Pattern: filedock:{instance_name}:event:{event_id}
func EventKey(instanceName, eventID string) string {
	return fmt.Sprintf("filedock:%s:event:%s", instanceName, eventID)
}

// EventKeyPrefix returns the prefix shared by every event hash of an instance.
func EventKeyPrefix(instanceName string) string {
	return fmt.Sprintf("filedock:%s:event:", instanceName)
}

// EventIndexKey returns the Redis key of the time-ordered event index.
// Pattern: filedock:{instance_name}:events
func EventIndexKey(instanceName string) string {
	return fmt.Sprintf("filedock:%s:events", instanceName)
}

// EventStreamChannel returns the Pub/Sub channel carrying live events.
// Pattern: filedock:{instance_name}:event_stream
func EventStreamChannel(instanceName string) string {
	return fmt.Sprintf("filedock:%s:event_stream", instanceName)
}
