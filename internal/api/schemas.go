package api

// Amounts and rates are JSON strings so values reach the decimal layer
// without passing through floats.
const transactionSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["date", "account", "type", "amount"],
  "properties": {
    "date": {"type": "string", "pattern": "^[0-9]{8}$"},
    "account": {"type": "string", "minLength": 1, "maxLength": 50},
    "type": {"type": "string", "pattern": "^[DdWw]$"},
    "amount": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"}
  }
}`

const ruleSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["date", "rule_id", "rate"],
  "properties": {
    "date": {"type": "string", "pattern": "^[0-9]{8}$"},
    "rule_id": {"type": "string", "minLength": 1, "maxLength": 50},
    "rate": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"}
  }
}`
