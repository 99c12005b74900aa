package pipeline

import (
	"fmt"
	"regexp"

	"go-data-processor/internal/model"
)

// Validate evaluates every rule against every record. Violations accumulate
// as ProcessingErrors on the stage result; validation is observational and
// never drops a record.
func Validate(in []model.DataRecord, rules []model.ValidationRule) []model.ProcessingError {
	var perrs []model.ProcessingError
	for _, rule := range rules {
		for _, rec := range in {
			if perr := checkRule(rec, rule); perr != nil {
				perrs = append(perrs, *perr)
			}
		}
	}
	return perrs
}

func checkRule(rec model.DataRecord, rule model.ValidationRule) *model.ProcessingError {
	value, present := rec.Field(rule.Field)

	switch rule.RuleType {
	case model.RuleRequired:
		if !present || value == nil {
			return violation(rec, rule, fmt.Sprintf("field %s is required", rule.Field))
		}

	case model.RuleDataType:
		expected, _ := paramString(rule.Parameters, "expected_type")
		if present {
			if actual := model.TypeName(value); actual != expected {
				return violation(rec, rule, fmt.Sprintf("field %s expected type %s, got %s", rule.Field, expected, actual))
			}
		}

	case model.RuleRange:
		// Non-numeric fields are skipped, not failed.
		num, numeric := model.Numeric(value)
		if !present || !numeric {
			return nil
		}
		min, hasMin := paramFloat(rule.Parameters, "min")
		max, hasMax := paramFloat(rule.Parameters, "max")
		if (hasMin && num < min) || (hasMax && num > max) {
			return violation(rec, rule, fmt.Sprintf("field %s value %v out of range [%v, %v]", rule.Field, num, min, max))
		}

	case model.RuleLength:
		length, measurable := valueLength(value)
		if !present || !measurable {
			return nil
		}
		minLen, hasMin := paramFloat(rule.Parameters, "min_length")
		maxLen, hasMax := paramFloat(rule.Parameters, "max_length")
		if (hasMin && float64(length) < minLen) || (hasMax && float64(length) > maxLen) {
			return violation(rec, rule, fmt.Sprintf("field %s length %d outside bounds", rule.Field, length))
		}

	case model.RulePattern:
		s, isString := value.(string)
		if !present || !isString {
			return nil
		}
		pattern, _ := paramString(rule.Parameters, "regex")
		re, err := regexp.Compile(pattern)
		if err != nil {
			return violation(rec, rule, fmt.Sprintf("invalid pattern %q: %v", pattern, err))
		}
		if !re.MatchString(s) {
			return violation(rec, rule, fmt.Sprintf("field %s does not match pattern %q", rule.Field, pattern))
		}

	case model.RuleCustom:
		src, _ := paramString(rule.Parameters, "expression")
		program, err := compile(src)
		if err != nil {
			return violation(rec, rule, err.Error())
		}
		env, _ := rec.Fields()
		if env == nil {
			env = map[string]interface{}{}
		}
		if !evalBool(program, env) {
			return violation(rec, rule, fmt.Sprintf("custom rule %q failed for field %s", src, rule.Field))
		}

	default:
		return violation(rec, rule, fmt.Sprintf("unknown rule type %q", rule.RuleType))
	}
	return nil
}

func violation(rec model.DataRecord, rule model.ValidationRule, message string) *model.ProcessingError {
	perr := model.NewProcessingError("validation_error", message, rec.ID)
	perr.Context = map[string]interface{}{
		"field":     rule.Field,
		"rule_type": rule.RuleType,
	}
	return &perr
}

func valueLength(v interface{}) (int, bool) {
	switch val := v.(type) {
	case string:
		return len(val), true
	case []interface{}:
		return len(val), true
	default:
		return 0, false
	}
}

func paramString(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func paramFloat(params map[string]interface{}, key string) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	return model.Numeric(v)
}
