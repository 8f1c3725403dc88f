package mock

import (
	"encoding/json"
	"strings"
)

// signatures maps each product to identifiers that only its policies use
var signatures = []struct {
	product  string
	keywords []string
}{
	{"SecureZone", []string{"szAgentPolicyId", "szAccessControlPolicyId", "secureDriveLetter", "controlSuiteTemplateId", "isTakeoutDriveBlock", "secureDrivePolicy", "accCtlAgentPolicy", "szAgent"}},
	{"RansomCruncher", []string{"rcDetectPolicyId", "protectExtension", "behaviorDetectLevelType", "isRollbackUse", "rcRdpPolicyId", "rcDetectPolicy", "ransomCruncher"}},
	{"nPouch", []string{"npPolicyId", "npOriginProtectPolicyId", "isMaxReadCount", "isScreenWaterMark", "npouchPolicy", "originProtect"}},
	{"innoECM", []string{"agentPolicyId", "driveMountType", "privateFolderName", "storageQuota", "ecmAgent", "ecmStorage", "innoECM"}},
	{"LizardBackup", []string{"lbPolicyId", "lbAgentPolicyId", "sourceFolderPath", "isBackupRealtime", "lbRemoteStorageId", "lizardBackup"}},
	{"innoMark", []string{"imPolicyId", "isWatermarkTrigger", "isCapturePrevent", "imTemplateId", "waterMarkOpacity", "innoMark"}},
}

// DetectProducts lists the products whose identifiers appear in policy
func DetectProducts(policy string) []string {
	var found []string
	for _, sig := range signatures {
		for _, kw := range sig.keywords {
			if strings.Contains(policy, kw) {
				found = append(found, sig.product)
				break
			}
		}
	}
	return found
}

// InputKind classifies the policy text as "json" or "log"
func InputKind(policy string) string {
	if json.Valid([]byte(strings.TrimSpace(policy))) {
		return "json"
	}
	return "log"
}
