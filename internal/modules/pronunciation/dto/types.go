package dto

type PronounceOutput struct {
	Label    string
	Source   string
	AssetURL string
	Ignored  bool
}
