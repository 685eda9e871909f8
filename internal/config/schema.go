package config

// configSchema is the JSON schema for engine configuration files.
// Structural bounds live here; cross-field rules live in Config.Validate.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "srs": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "algorithm": {"type": "string", "enum": ["sm2", "fsrs"]},
        "learning_steps_minutes": {
          "type": "array",
          "items": {"type": "integer", "minimum": 1}
        },
        "min_interval_days": {"type": "integer", "minimum": 1},
        "max_interval_days": {"type": "integer", "minimum": 1},
        "lapse_multiplier": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
        "lapse_ease_penalty": {"type": "number", "minimum": 0},
        "desired_retention": {"type": "number", "minimum": 0.5, "maximum": 0.99}
      }
    },
    "forgetting": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "history_cap": {"type": "integer", "minimum": 1},
        "smoothing_factor": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
        "retrievability_threshold": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "mastery": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "to_young": {"$ref": "#/$defs/gate"},
        "to_mature": {"$ref": "#/$defs/gate"},
        "to_master": {"$ref": "#/$defs/gate"}
      }
    },
    "difficulty": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "target_success_rate": {"type": "number", "minimum": 0.5, "maximum": 0.9},
        "adjustment_threshold": {"type": "number", "exclusiveMinimum": 0},
        "max_adjustment_magnitude": {"type": "number", "exclusiveMinimum": 0},
        "min_confidence": {"type": "number", "minimum": 0, "maximum": 1},
        "min_attempts": {"type": "integer", "minimum": 1},
        "window_size": {"type": "integer", "minimum": 1}
      }
    },
    "queue": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "overdue_weight": {"type": "number", "minimum": 0, "maximum": 1},
        "retrievability_weight": {"type": "number", "minimum": 0, "maximum": 1},
        "weakness_weight": {"type": "number", "minimum": 0, "maximum": 1},
        "overdue_saturation_days": {"type": "number", "exclusiveMinimum": 0},
        "soft_prereq_discount": {"type": "number", "minimum": 0, "maximum": 1},
        "default_item_seconds": {"type": "integer", "minimum": 1}
      }
    },
    "load": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_consecutive_difficult": {"type": "integer", "minimum": 1},
        "accuracy_decline_threshold": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
        "min_sample_for_decline": {"type": "integer", "minimum": 2}
      }
    }
  },
  "$defs": {
    "gate": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "min_reviews": {"type": "integer", "minimum": 0},
        "min_accuracy": {"type": "number", "minimum": 0, "maximum": 1},
        "min_streak": {"type": "integer", "minimum": 0},
        "min_interval_days": {"type": "integer", "minimum": 0}
      }
    }
  }
}`
