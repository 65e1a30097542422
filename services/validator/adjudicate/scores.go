// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adjudicate

import "github.com/AleutianAI/AleutianVerify/services/validator/datatypes"

// NormalizeConfidence sweeps a finished result set: every confidence is
// clamped to [0,1] and degraded verdicts are floored at zero, so a
// model-supplied score can never survive on a verdict whose call failed.
func NormalizeConfidence(verdicts []datatypes.Verdict) {
	for i := range verdicts {
		if isDegraded(verdicts[i].MatchingMethod) {
			verdicts[i].Confidence = 0
			continue
		}
		verdicts[i].Confidence = clamp01(verdicts[i].Confidence)
	}
}

func isDegraded(method string) bool {
	switch method {
	case datatypes.MethodTokenOverlap, datatypes.MethodUnverifiedQuote:
		return false
	}
	return true
}
