package game

// MergeRemote 合并远端状态快照
//
// 同步约定是行级last-write-wins：远端快照整体覆盖本地，
// 唯一例外是本地进行中的滑行动画提示——它是纯本地的渲染状态，
// 远端快照（本来就不持久化该字段）不得把它冲掉。
func MergeRemote(local, remote *State) *State {
	if remote == nil {
		return local
	}

	merged := remote.Clone()
	if local != nil && local.Sliding != nil {
		merged.Sliding = local.Sliding
	}
	return merged
}
