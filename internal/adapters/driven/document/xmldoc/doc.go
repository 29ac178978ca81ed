// Package xmldoc stores text documents as XML files for the external editing workflow.
//
// A document has a SceneText root with a Speakers section and a Strings
// section. Each Entry carries PointerOffset, JapaneseText, EnglishText,
// Notes, Id and Status, plus the dialogue fields (VoiceId, StructId,
// SpeakerId, UnknownPointer1, UnknownPointer2) for story scripts.
// Elements the pipeline does not know are kept and written back as found.
package xmldoc
