// SPDX-License-Identifier: MPL-2.0

package gamemod

import (
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// LoaderConflict describes a mod id claimed by different loaders locally and remotely.
type LoaderConflict struct {
	ModID          string
	LocalLoaderID  string
	RemoteLoaderID string
}

// ComputeCommonData merges local and remote records into one CommonData per
// mod id. Local data wins because it reflects what is on disk; engine and
// backend requirements missing locally are filled from the remote record of
// the same loader.
func ComputeCommonData(local LocalMap, remote RemoteMap) CommonMap {
	merged := make(CommonMap, len(local)+len(remote))

	for id, rm := range remote {
		merged[id] = rm.Common
	}

	for id, lm := range local {
		common := lm.Common
		if rm, ok := remote[id]; ok && rm.Common.LoaderID == common.LoaderID {
			if common.Engine == nil {
				common.Engine = rm.Common.Engine
			}
			if common.UnityBackend == nil {
				common.UnityBackend = rm.Common.UnityBackend
			}
		}
		merged[id] = common
	}

	return merged
}

// LoaderConflicts lists mod ids whose local and remote records disagree on the
// loader, sorted by mod id.
func LoaderConflicts(local LocalMap, remote RemoteMap) []LoaderConflict {
	var conflicts []LoaderConflict
	for id, lm := range local {
		rm, ok := remote[id]
		if !ok || rm.Common.LoaderID == lm.Common.LoaderID {
			continue
		}
		conflicts = append(conflicts, LoaderConflict{
			ModID:          id,
			LocalLoaderID:  lm.Common.LoaderID,
			RemoteLoaderID: rm.Common.LoaderID,
		})
	}
	slices.SortFunc(conflicts, func(a, b LoaderConflict) int {
		return strings.Compare(a.ModID, b.ModID)
	})
	return conflicts
}

// IsOutdated reports whether the remote catalog offers a newer version than
// the one recorded in the local manifest. Mods without a manifest, and
// versions that are not semver, are never reported as outdated.
func IsOutdated(local LocalMod, remote RemoteMod) bool {
	if local.Data.Manifest == nil {
		return false
	}
	installed := canonicalVersion(local.Data.Manifest.Version)
	latest := canonicalVersion(remote.LatestVersion())
	if !semver.IsValid(installed) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(latest, installed) > 0
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
