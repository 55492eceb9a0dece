package outbox

const workoutSummarizedSchema = `{
  "type": "object",
  "title": "WorkoutSummarized",
  "properties": {
    "workout_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "workout_type": {"type": "string", "enum": ["SWM", "RUN", "WLK"]},
    "label": {"type": "string"},
    "duration_hours": {"type": "number", "exclusiveMinimum": 0},
    "distance_km": {"type": "number"},
    "speed_kmh": {"type": "number"},
    "calories": {"type": "number"},
    "recorded_at": {"type": "string", "format": "date-time"},
    "source": {"type": "string"},
    "version": {"type": "string"}
  },
  "required": ["workout_id", "tenant_id", "user_id", "workout_type", "label", "duration_hours", "distance_km", "speed_kmh", "calories", "recorded_at", "version"],
  "additionalProperties": false
}`

// schemas maps an event type to the JSON schema registered under its subject.
var schemas = map[string]string{
	"workout.summarized": workoutSummarizedSchema,
}
