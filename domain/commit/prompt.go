package commit

// DefaultPrompt is the instruction sent ahead of the change context when no
// base commit message is configured.
const DefaultPrompt = "以下はGitの差分や変更ファイルリストです。この情報に基づいて、変更内容を要約したコミットメッセージを生成してください"

// Instruction suffixes appended to the base prompt, one per context kind.
const (
	DiffSuffix     = "（下記は変更差分です。要約してコミットメッセージを生成してください）"
	FileListSuffix = "（下記は変更ファイル一覧です。内容を要約してコミットメッセージを生成してください）"
)

// Suffix returns the instruction suffix for s.
func (s Source) Suffix() string {
	if s == SourceDiff {
		return DiffSuffix
	}
	return FileListSuffix
}
