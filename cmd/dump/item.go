package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dump-go/internal/app"
	"dump-go/internal/dump"
	"dump-go/internal/model"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage items on canvases",
}

func printItems(c *model.Canvas) {
	if c == nil {
		fmt.Println("No canvas selected.")
		return
	}
	fmt.Printf("%s (%s)\n", c.Name, c.ID)
	if len(c.Items) == 0 {
		fmt.Println("  No items.")
		return
	}

	todo := c.Type != nil && *c.Type == model.CanvasTodo
	for _, it := range c.Items {
		box := ""
		if todo {
			box = "[ ] "
			if it.IsCompleted {
				box = "[x] "
			}
		}
		text := dump.DisplayContent(it)
		if it.Title != nil {
			text = *it.Title + "  <" + text + ">"
		}
		fmt.Printf("  %s%-5s %s  %s  %s\n", box, it.Type, it.CreatedAt.Local().Format("2006-01-02 15:04"), it.ID, text)
		if it.Notes != nil {
			fmt.Printf("        note: %s\n", *it.Notes)
		}
	}
}

// itemMutation builds a command whose args[0] is an item ID and args[1] the
// canvas holding it.
func itemMutation(use, short string, args cobra.PositionalArgs, fn func(s *dump.Store, args []string) error) *cobra.Command {
	name := "item " + strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, name, args, func(ctx context.Context, a *app.DumpApp) error {
				var err error
				if doErr := a.Do(ctx, func(s *dump.Store) {
					if _, home, ok := s.FindItem(args[0]); !ok || home != args[1] {
						err = fmt.Errorf("item %s not found on canvas %s", args[0], args[1])
						return
					}
					err = fn(s, args)
				}); doErr != nil {
					return doErr
				}
				return err
			})
		},
	}
}

var itemLsCmd = &cobra.Command{
	Use:   "ls [CANVAS]",
	Short: "List the items of a canvas (default: first canvas)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "item ls", args, func(ctx context.Context, a *app.DumpApp) error {
			var err error
			if doErr := a.Do(ctx, func(s *dump.Store) {
				if len(args) == 0 {
					printItems(s.SelectedCanvas())
					return
				}
				c := s.FindCanvas(args[0])
				if c == nil {
					err = fmt.Errorf("canvas not found: %s", args[0])
					return
				}
				printItems(c)
			}); doErr != nil {
				return doErr
			}
			return err
		})
	},
}

var itemAddCmd = &cobra.Command{
	Use:   "add CONTENT...",
	Short: "Capture text, a link or a file path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		canvasID, _ := cmd.Flags().GetString("canvas")
		noTitle, _ := cmd.Flags().GetBool("no-title")
		content := strings.Join(args, " ")

		return withApp(cmd, "item add", []string{content}, func(ctx context.Context, a *app.DumpApp) error {
			id, err := a.Capture(ctx, content, canvasID, !noTitle)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s (%s)\n", dump.Classify(content), id)
			return nil
		})
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Capture the clipboard contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		canvasID, _ := cmd.Flags().GetString("canvas")
		noTitle, _ := cmd.Flags().GetBool("no-title")

		return withApp(cmd, "paste", nil, func(ctx context.Context, a *app.DumpApp) error {
			id, err := a.Paste(ctx, canvasID, !noTitle)
			if err != nil {
				return err
			}
			fmt.Printf("Pasted item %s\n", id)
			return nil
		})
	},
}

var itemEditCmd = itemMutation("edit ID CANVAS CONTENT...", "Replace the content of an item", cobra.MinimumNArgs(3),
	func(s *dump.Store, args []string) error {
		content := strings.TrimSpace(strings.Join(args[2:], " "))
		if content == "" {
			return fmt.Errorf("content must not be empty")
		}
		s.UpdateItem(args[0], args[1], content)
		return nil
	})

var itemRmCmd = itemMutation("rm ID CANVAS", "Delete an item", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		s.DeleteItem(args[0], args[1])
		return nil
	})

var itemMvCmd = itemMutation("mv ID FROM TO", "Move an item to the front of another canvas", cobra.ExactArgs(3),
	func(s *dump.Store, args []string) error {
		if s.FindCanvas(args[2]) == nil {
			return fmt.Errorf("canvas not found: %s", args[2])
		}
		s.MoveItem(args[0], args[1], args[2])
		return nil
	})

var itemDoneCmd = itemMutation("done ID CANVAS", "Toggle completion of an item", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		s.ToggleItemCompletion(args[0], args[1])
		return nil
	})

var itemNotesCmd = itemMutation("notes ID CANVAS [TEXT...]", "Set notes on an item, or clear them", cobra.MinimumNArgs(2),
	func(s *dump.Store, args []string) error {
		var notes *string
		if text := strings.Join(args[2:], " "); text != "" {
			notes = &text
		}
		s.UpdateItemNotes(args[0], args[1], notes)
		return nil
	})

var itemReorderCmd = &cobra.Command{
	Use:   "reorder CANVAS FROM[,FROM...] TO",
	Short: "Move items so they sit before position TO",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseReorder(args[1], args[2])
		if err != nil {
			return err
		}
		return withApp(cmd, "item reorder", args, func(ctx context.Context, a *app.DumpApp) error {
			var err error
			if doErr := a.Do(ctx, func(s *dump.Store) {
				if s.FindCanvas(args[0]) == nil {
					err = fmt.Errorf("canvas not found: %s", args[0])
					return
				}
				s.ReorderItems(args[0], from, to)
			}); doErr != nil {
				return doErr
			}
			return err
		})
	},
}

var itemTitleCmd = &cobra.Command{
	Use:   "title ID",
	Short: "Look up the page title of a link again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "item title", args, func(ctx context.Context, a *app.DumpApp) error {
			return a.RefreshTitle(ctx, args[0])
		})
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop PAYLOAD [TARGET]",
	Short: "Apply a drag payload (ITEM|CANVAS or CANVAS:ID) to a target canvas or the root",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := dump.ParsePayload(args[0]); err != nil {
			return err
		}
		target := ""
		if len(args) == 2 {
			target = args[1]
		}
		return withApp(cmd, "drop", args, func(ctx context.Context, a *app.DumpApp) error {
			return a.Do(ctx, func(s *dump.Store) { s.Drop(args[0], target) })
		})
	},
}

func init() {
	itemCmd.AddCommand(itemLsCmd)
	itemCmd.AddCommand(itemAddCmd)
	itemAddCmd.Flags().String("canvas", "", "Target canvas ID (default: first canvas)")
	itemAddCmd.Flags().Bool("no-title", false, "Skip page title lookup for links")
	itemCmd.AddCommand(itemEditCmd)
	itemCmd.AddCommand(itemRmCmd)
	itemCmd.AddCommand(itemMvCmd)
	itemCmd.AddCommand(itemDoneCmd)
	itemCmd.AddCommand(itemNotesCmd)
	itemCmd.AddCommand(itemReorderCmd)
	itemCmd.AddCommand(itemTitleCmd)
}
