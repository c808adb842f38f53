// Storage subcommands: status, listing, record inspection, deletion, and
// index maintenance.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quantmind/internal/config"
	"quantmind/internal/fetch"
	"quantmind/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and maintain the local store",
	RunE:  runStorageStatus,
}

var storageStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage statistics",
	RunE:  runStorageStatus,
}

var storageListCmd = &cobra.Command{
	Use:   "list <raw|knowledge|embeddings>",
	Short: "List item IDs in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageList,
}

var storageGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored knowledge record",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageGet,
}

var storageRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a knowledge record (and optionally its raw file)",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageRm,
}

var storageRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild every category index from a directory scan",
	RunE:  runStorageRebuild,
}

var rmWithRaw bool

func init() {
	storageRmCmd.Flags().BoolVar(&rmWithRaw, "raw", false, "also delete the raw file stored under the same ID")
	storageCmd.AddCommand(storageStatusCmd, storageListCmd, storageGetCmd, storageRmCmd, storageRebuildCmd)
}

func openStorage() (*storage.Local, error) {
	s, err := storage.NewLocal(cfg, fetch.New(cfg.GetDownloadTimeout()))
	if err != nil {
		return nil, err
	}
	if cfg.Storage.WatchTampering {
		if err := s.WatchTampering(context.Background()); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func runStorageStatus(cmd *cobra.Command, args []string) error {
	s, err := openStorage()
	if err != nil {
		return err
	}
	defer s.Close()

	info := s.Info()
	fmt.Printf("Storage at %s\n", info.BaseDir)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  knowledges:  %d\n", info.KnowledgeCount)
	fmt.Printf("  raw files:   %d\n", info.RawFileCount)
	fmt.Printf("  embeddings:  %d\n", info.EmbeddingCount)
	for cat, path := range info.IndexFiles {
		fmt.Printf("  %s index: %s\n", cat, path)
	}
	return nil
}

func runStorageList(cmd *cobra.Command, args []string) error {
	s, err := openStorage()
	if err != nil {
		return err
	}
	defer s.Close()

	var ids []string
	switch args[0] {
	case "raw", config.RawFilesDirName:
		ids, err = s.ListRawFiles()
	case "knowledge", config.KnowledgesDirName:
		ids, err = s.ListKnowledges()
	case "embeddings", "embedding":
		ids, err = s.ListEmbeddings()
	default:
		return fmt.Errorf("unknown category %q (want raw, knowledge or embeddings)", args[0])
	}
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		fmt.Println("(empty)")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runStorageGet(cmd *cobra.Command, args []string) error {
	s, err := openStorage()
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.GetKnowledgeRaw(args[0])
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("knowledge %q not found", args[0])
	}
	fmt.Println(string(data))
	return nil
}

func runStorageRm(cmd *cobra.Command, args []string) error {
	s, err := openStorage()
	if err != nil {
		return err
	}
	defer s.Close()

	id := args[0]
	removed, err := s.DeleteKnowledge(id)
	if err != nil {
		return err
	}
	if removed {
		fmt.Printf("deleted knowledge %s\n", id)
	} else {
		fmt.Printf("knowledge %s not found\n", id)
	}

	if rmWithRaw {
		rawRemoved, err := s.DeleteRawFile(id)
		if err != nil {
			return err
		}
		if rawRemoved {
			fmt.Printf("deleted raw file %s\n", id)
		}
	}
	return nil
}

func runStorageRebuild(cmd *cobra.Command, args []string) error {
	s, err := openStorage()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.RebuildAllIndexes(); err != nil {
		return err
	}

	info := s.Info()
	fmt.Printf("rebuilt indexes: %d knowledges, %d raw files, %d embeddings\n",
		info.KnowledgeCount, info.RawFileCount, info.EmbeddingCount)
	return nil
}
