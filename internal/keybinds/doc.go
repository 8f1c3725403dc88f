/*
Package keybinds provides customizable keyboard binding management for the
terminal UI.

# Contexts

Bindings are looked up in the focused context first, then in the global
context:
  - global: available everywhere (submit, mode selection, file prompt)
  - editor: policy editor focused
  - query: simulation query field focused
  - prompt: file path prompt open
  - result: result panel focused

# Configuration File Format

~/.policyctl/keybinds.json maps actions to comma-separated keys. A
configured action replaces all of its default keys in that context:

	{
	  "version": "1.0",
	  "global": {
	    "submit": "ctrl+s,f5",
	    "load_sample": "ctrl+t"
	  },
	  "result": {
	    "copy_result": "y"
	  }
	}

Unknown actions are rejected when the file is loaded. ValidateRegistry
reports rebound reserved keys (ctrl+c) and context bindings that shadow a
global binding.
*/
package keybinds
