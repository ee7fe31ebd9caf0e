package app

import (
	"github.com/vk/pipedox/internal/registry"
	"github.com/vk/pipedox/modules/htmltext"
	"github.com/vk/pipedox/modules/langdetect"
	"github.com/vk/pipedox/modules/rawtext"
	"github.com/vk/pipedox/modules/textanalysis"
)

// coreModules lists every extractor module compiled into the binary.
func coreModules() []registry.Module {
	return []registry.Module{
		&rawtext.Module{},
		&htmltext.Module{},
		&textanalysis.Module{},
		&langdetect.Module{},
	}
}
